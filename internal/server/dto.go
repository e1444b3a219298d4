package server

import (
	"time"

	"github.com/AlexViridi/TandoorRecipeMigration/constants"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/queue"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/review"
)

// itemView is the wire shape of a queue item. Spool and preview paths
// are server internals and never leave the process.
type itemView struct {
	ID          string           `json:"id"`
	FileName    string           `json:"file_name"`
	ContentType string           `json:"content_type,omitempty"`
	Size        int64            `json:"size"`
	UploadedAt  time.Time        `json:"uploaded_at"`
	Status      constants.Status `json:"status"`
	Recipe      *recipe.Recipe   `json:"recipe,omitempty"`
	Error       *failureView     `json:"error,omitempty"`
}

type failureView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type formView struct {
	ItemID string        `json:"item_id"`
	Recipe recipe.Recipe `json:"recipe"`
}

func viewOf(it queue.Item) itemView {
	v := itemView{
		ID:          it.ID.String(),
		FileName:    it.FileName,
		ContentType: it.ContentType,
		Size:        it.Size,
		UploadedAt:  it.UploadedAt,
		Status:      it.Status,
		Recipe:      it.Recipe,
	}
	if it.Failure != nil {
		v.Error = &failureView{
			Kind:    string(it.Failure.Kind),
			Message: it.Failure.Message,
		}
	}
	return v
}

func viewsOf(items []queue.Item) []itemView {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, viewOf(it))
	}
	return out
}

func viewOfForm(f review.Form) formView {
	return formView{ItemID: f.ItemID.String(), Recipe: f.Recipe}
}
