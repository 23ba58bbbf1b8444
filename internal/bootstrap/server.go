package bootstrap

import (
	"context"
	"net/http"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/workspace"
)

// Shutdown stops the sweeper and closes every workspace before draining
// srv. Closing the workspaces ends their session event streams, which
// would otherwise hold srv.Shutdown until ctx expires.
func Shutdown(ctx context.Context, srv *http.Server, sweeper *workspace.Sweeper, registry *workspace.Registry) error {
	if sweeper != nil {
		sweeper.Stop(ctx)
	}
	registry.Close()
	return srv.Shutdown(ctx)
}
