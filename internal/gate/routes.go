package gate

import (
	"path"
	"strings"
)

type Access int

const (
	Public Access = iota
	Protected
	NotFound
)

const (
	LoginPath    = "/login"
	SignupPath   = "/signup"
	HomePath     = "/"
	NotFoundPath = "/404"
)

// Route is one entry of the dashboard route table. Pattern segments starting
// with ':' capture a parameter.
type Route struct {
	Name    string
	Pattern string
	Access  Access
	// Shell reports whether the page renders inside the navigation shell.
	Shell bool
}

// Routes is matched in order, so static segments must precede parameters
// at the same depth.
var Routes = []Route{
	{Name: "login", Pattern: LoginPath, Access: Public},
	{Name: "signup", Pattern: SignupPath, Access: Public},
	{Name: "dashboard", Pattern: HomePath, Access: Protected, Shell: true},
	{Name: "employees", Pattern: "/employees", Access: Protected, Shell: true},
	{Name: "employee-add", Pattern: "/employees/add", Access: Protected, Shell: true},
	{Name: "employee-edit", Pattern: "/employees/edit/:id", Access: Protected, Shell: true},
	{Name: "employee-detail", Pattern: "/employees/:id", Access: Protected, Shell: true},
	{Name: "departments", Pattern: "/departments", Access: Protected, Shell: true},
	{Name: "reports", Pattern: "/reports", Access: Protected, Shell: true},
	{Name: "not-found", Pattern: NotFoundPath, Access: NotFound},
}

// Normalize strips query and fragment, cleans the path and removes the
// trailing slash.
func Normalize(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return path.Clean(raw)
}

// Match finds the first route matching an already normalized path.
func Match(p string) (Route, map[string]string, bool) {
	segs := split(p)
	for _, r := range Routes {
		if params, ok := matchSegments(split(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, ps := range pattern {
		if strings.HasPrefix(ps, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[ps[1:]] = segs[i]
			continue
		}
		if ps != segs[i] {
			return nil, false
		}
	}
	return params, true
}
