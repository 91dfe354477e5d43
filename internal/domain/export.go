package domain

import (
	"time"

	"github.com/google/uuid"
)

// Export statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// CVExport records a single CV rendering.
type CVExport struct {
	ID            uuid.UUID              `json:"id"`
	UserID        uuid.UUID              `json:"user_id"`
	CVID          *uuid.UUID             `json:"cv_id,omitempty"`
	Template      string                 `json:"template"`
	Status        string                 `json:"status"`
	PagesRendered int                    `json:"pages_rendered"`
	PagesReturned int                    `json:"pages_returned"`
	RemovedPages  []int                  `json:"removed_pages"`
	Metadata      map[string]interface{} `json:"metadata"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// PageOptions describes the printed page. Sizes are in inches.
type PageOptions struct {
	PaperWidth        float64 `yaml:"paper_width" json:"paperWidth,omitempty"`
	PaperHeight       float64 `yaml:"paper_height" json:"paperHeight,omitempty"`
	MarginTop         float64 `yaml:"margin_top" json:"marginTop,omitempty"`
	MarginBottom      float64 `yaml:"margin_bottom" json:"marginBottom,omitempty"`
	MarginLeft        float64 `yaml:"margin_left" json:"marginLeft,omitempty"`
	MarginRight       float64 `yaml:"margin_right" json:"marginRight,omitempty"`
	PrintBackground   bool    `yaml:"print_background" json:"printBackground,omitempty"`
	PreferCSSPageSize bool    `yaml:"prefer_css_page_size" json:"preferCssPageSize,omitempty"`
}

// A4 is 210mm x 297mm.
var A4 = PageOptions{PaperWidth: 8.27, PaperHeight: 11.69, PrintBackground: true, PreferCSSPageSize: true}

// Merge returns p with every non-zero field of o applied on top.
func (p PageOptions) Merge(o *PageOptions) PageOptions {
	if o == nil {
		return p
	}
	set := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	set(&p.PaperWidth, o.PaperWidth)
	set(&p.PaperHeight, o.PaperHeight)
	set(&p.MarginTop, o.MarginTop)
	set(&p.MarginBottom, o.MarginBottom)
	set(&p.MarginLeft, o.MarginLeft)
	set(&p.MarginRight, o.MarginRight)
	p.PrintBackground = p.PrintBackground || o.PrintBackground
	p.PreferCSSPageSize = p.PreferCSSPageSize || o.PreferCSSPageSize
	return p
}

// ExportCompletedEvent is published after every successful export.
type ExportCompletedEvent struct {
	ExportID      uuid.UUID `json:"export_id"`
	UserID        uuid.UUID `json:"user_id"`
	Template      string    `json:"template"`
	PagesRendered int       `json:"pages_rendered"`
	PagesReturned int       `json:"pages_returned"`
	RemovedPages  []int     `json:"removed_pages"`
	CompletedAt   time.Time `json:"completed_at"`
}
