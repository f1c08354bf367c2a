package navpatch

import "github.com/ziadkadry99/navpatch/internal/redirect"

// Action is the write an assignment calls for.
type Action string

const (
	// ActionSetHref points an existing anchor at the destination.
	ActionSetHref Action = "set-href"
	// ActionOverlay covers a label-only sidebar entry with a real link.
	ActionOverlay Action = "overlay"
)

// Assignment binds one navigation element to its destination.
type Assignment struct {
	Element Element `json:"element"`
	Label   string  `json:"label"`
	Href    string  `json:"href"`
	Action  Action  `json:"action"`
}

// ComputeAssignments decides, without touching any document, which elements
// of snap get which destination. Elements whose label is not in table are
// left out.
func ComputeAssignments(snap Snapshot, table *redirect.Table) []Assignment {
	if table == nil {
		return nil
	}

	var out []Assignment
	for _, el := range snap.Elements {
		dest, ok := table.Lookup(el.Text)
		if !ok {
			continue
		}
		action := ActionSetHref
		if el.Kind == KindSidebar {
			action = ActionOverlay
		}
		out = append(out, Assignment{
			Element: el,
			Label:   el.Text,
			Href:    dest,
			Action:  action,
		})
	}
	return out
}

// Pending reports the assignments that would still change the document: anchors
// whose href or click target differs, and sidebar entries that are unmarked or
// lack an overlay pointing at the destination.
func Pending(assignments []Assignment) []Assignment {
	var out []Assignment
	for _, a := range assignments {
		switch a.Action {
		case ActionSetHref:
			if a.Element.Href != a.Href || a.Element.Target != a.Href {
				out = append(out, a)
			}
		case ActionOverlay:
			if !a.Element.Patched || a.Element.Overlay != a.Href {
				out = append(out, a)
			}
		}
	}
	return out
}
