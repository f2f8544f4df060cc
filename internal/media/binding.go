package media

import "sort"

const (
	FieldCoverImage       = "cover_image"
	FieldAdditionalImages = "additional_images"
	FieldDemoVideo        = "demo_video"
)

// DefaultMaxAdditionalImages caps the gallery upload when no limit is set.
const DefaultMaxAdditionalImages = 10

// Slot binds a multipart field to the number of files it accepts.
type Slot struct {
	Field    string
	MaxFiles int
}

// SlotSet indexes the accepted upload fields by name.
type SlotSet map[string]Slot

// ProjectSlots returns the upload fields accepted for a project.
func ProjectSlots(maxAdditionalImages int) SlotSet {
	if maxAdditionalImages <= 0 {
		maxAdditionalImages = DefaultMaxAdditionalImages
	}
	return SlotSet{
		FieldCoverImage:       {Field: FieldCoverImage, MaxFiles: 1},
		FieldAdditionalImages: {Field: FieldAdditionalImages, MaxFiles: maxAdditionalImages},
		FieldDemoVideo:        {Field: FieldDemoVideo, MaxFiles: 1},
	}
}

// Fields lists the accepted field names in a stable order.
func (s SlotSet) Fields() []string {
	fields := make([]string, 0, len(s))
	for field := range s {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
