// Package route parses the external navigation signal: home, the
// favorites-only view, or a single verse by ID.
package route

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Home Kind = iota
	Favorites
	Verse
)

func (k Kind) String() string {
	switch k {
	case Favorites:
		return "favorites"
	case Verse:
		return "verse"
	default:
		return "home"
	}
}

// Route is a parsed navigation signal. VerseID is set only for Kind == Verse.
type Route struct {
	Kind    Kind
	VerseID int
}

// Parse accepts the hash-style forms the viewer historically used ("#/",
// "#/favorites", "#/verse/12") with the "#" and leading "/" both optional.
func Parse(raw string) (Route, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	s = strings.Trim(s, "/")

	switch {
	case s == "":
		return Route{Kind: Home}, nil
	case s == "favorites":
		return Route{Kind: Favorites}, nil
	case strings.HasPrefix(s, "verse/"):
		id, err := strconv.Atoi(strings.TrimPrefix(s, "verse/"))
		if err != nil {
			return Route{}, fmt.Errorf("bad verse id in route %q", raw)
		}
		return Route{Kind: Verse, VerseID: id}, nil
	default:
		return Route{}, fmt.Errorf("unknown route %q", raw)
	}
}
