package zisraw

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/segment"
)

// AttachmentInfo names one binary attachment carried by the container, e.g.
// a slide thumbnail or label image.
type AttachmentInfo struct {
	Name        string
	ContentType string
	ContentGUID uuid.UUID
	// Position is the absolute offset of the attachment segment, for
	// diagnostics.
	Position int64
}

// Attachments lists the container's attachments in directory order. The
// list is empty when the container has no attachment directory.
func (r *Reader) Attachments() []AttachmentInfo {
	infos := make([]AttachmentInfo, len(r.attachments))
	for i, a := range r.attachments {
		infos[i] = AttachmentInfo{
			Name:        a.Name,
			ContentType: a.ContentType,
			ContentGUID: a.ContentGUID,
			Position:    a.FilePosition,
		}
	}

	return infos
}

// AttachmentData reads one attachment's payload by name.
//
// Returns ErrNotFound when no attachment carries the name.
func (r *Reader) AttachmentData(name string) ([]byte, error) {
	if r.closed.Load() {
		return nil, errs.ErrClosed
	}

	for _, a := range r.attachments {
		if a.Name != name {
			continue
		}

		seg, err := segment.ReadSegmentAt(r.r, r.size, a.FilePosition)
		if err != nil {
			return nil, fmt.Errorf("attachment %q: %w", name, err)
		}
		if seg.Header.ID != segment.TagAttachment {
			return nil, fmt.Errorf("%w: attachment %q position %d holds a %q segment",
				errs.ErrInvalidStructure, name, a.FilePosition, seg.Header.ID)
		}

		return seg.Payload(0)
	}

	return nil, fmt.Errorf("%w: attachment %q", errs.ErrNotFound, name)
}
