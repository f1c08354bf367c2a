package navpatch

import "strings"

// overlayStyle makes the inserted anchor cover its container's clickable area
// without being visible.
const overlayStyle = "position:absolute;top:0;left:0;width:100%;height:100%;z-index:1;opacity:0"

// setStyleProperty sets one property in an inline style declaration, keeping
// the other declarations in place.
func setStyleProperty(style, prop, value string) string {
	var decls []string
	found := false
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			if found {
				continue
			}
			decl = prop + ":" + value
			found = true
		}
		decls = append(decls, decl)
	}
	if !found {
		decls = append(decls, prop+":"+value)
	}
	return strings.Join(decls, ";")
}
