package entities

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResourceType classifies an uploaded artifact
type ResourceType string

const (
	ResourceTypeImage    ResourceType = "image"
	ResourceTypePDF      ResourceType = "pdf"
	ResourceTypeDocument ResourceType = "document"
)

// Resource is an uploaded artifact attached to a session
type Resource struct {
	ID           string       `json:"id"`
	Filename     string       `json:"filename"`
	OriginalName string       `json:"originalName"`
	Type         ResourceType `json:"type"`
	URL          string       `json:"url"`
	UploadedAt   time.Time    `json:"uploadedAt"`
	IsActive     bool         `json:"isActive"`
}

// NewResource creates a resource record for an uploaded file. Resources
// start inactive; the speaker promotes one explicitly.
func NewResource(originalName, storedName, url string) Resource {
	return Resource{
		ID:           uuid.NewString(),
		Filename:     storedName,
		OriginalName: originalName,
		Type:         DetectResourceType(originalName),
		URL:          url,
		UploadedAt:   time.Now().UTC(),
		IsActive:     false,
	}
}

// DetectResourceType classifies a file by its extension
func DetectResourceType(filename string) ResourceType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return ResourceTypeImage
	case ".pdf":
		return ResourceTypePDF
	default:
		return ResourceTypeDocument
	}
}
