package media

import "github.com/goliatone/go-portfolio/internal/projects"

// Attachment describes a file persisted for one project media field.
type Attachment struct {
	Field        string `json:"field"`
	OriginalName string `json:"original_name"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type,omitempty"`
	Checksum     string `json:"checksum"`
}

// ToMediaUpload groups stored attachments into the record paths expected by
// the project service. Later cover or video files win over earlier ones.
func ToMediaUpload(attachments []Attachment) projects.MediaUpload {
	var upload projects.MediaUpload
	for _, attachment := range attachments {
		switch attachment.Field {
		case FieldCoverImage:
			upload.CoverImage = attachment.Path
		case FieldAdditionalImages:
			upload.AdditionalImages = append(upload.AdditionalImages, attachment.Path)
		case FieldDemoVideo:
			upload.DemoVideo = attachment.Path
		}
	}
	return upload
}
