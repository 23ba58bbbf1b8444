// Package gate decides, from the session state alone, what a client sees for
// a requested path.
package gate

import (
	"context"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/session"
)

type Action string

const (
	ActionLoading  Action = "loading"
	ActionRender   Action = "render"
	ActionRedirect Action = "redirect"
)

type Decision struct {
	Action   Action            `json:"action"`
	Path     string            `json:"path"`
	Route    string            `json:"route,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Shell    bool              `json:"shell"`
	Params   map[string]string `json:"params,omitempty"`
}

// Resolve never fails: every snapshot and path yields a decision.
func Resolve(snap session.Snapshot, rawPath string) Decision {
	p := Normalize(rawPath)
	if snap.Loading {
		return Decision{Action: ActionLoading, Path: p}
	}

	route, params, ok := Match(p)

	if snap.User == nil {
		if ok && route.Access == Public {
			return render(p, route, params)
		}
		return redirect(p, LoginPath)
	}

	if !ok {
		return redirect(p, NotFoundPath)
	}
	if route.Access == Public {
		return redirect(p, HomePath)
	}
	return render(p, route, params)
}

// Follow re-resolves path for every session snapshot from w. The returned
// channel holds only the latest decision and closes with the watch.
func Follow(ctx context.Context, w session.Watcher, path string) <-chan Decision {
	out := make(chan Decision, 1)
	snaps := w.Watch(ctx)
	go func() {
		defer close(out)
		for snap := range snaps {
			d := Resolve(snap, path)
			select {
			case <-out:
			default:
			}
			out <- d
		}
	}()
	return out
}

func render(p string, r Route, params map[string]string) Decision {
	return Decision{Action: ActionRender, Path: p, Route: r.Name, Shell: r.Shell, Params: params}
}

func redirect(p, to string) Decision {
	return Decision{Action: ActionRedirect, Path: p, Redirect: to}
}
