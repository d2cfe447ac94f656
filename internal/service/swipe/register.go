package swipe

import (
	"google.golang.org/grpc"

	"github.com/oggyb/matchmaking-core/internal/app"
	"github.com/oggyb/matchmaking-core/internal/matching"
	pb "github.com/oggyb/matchmaking-core/internal/rpc/swipev1"
)

// Registrar ties the Swipe service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
	engine *matching.Engine
}

// NewRegistrar creates a new Registrar for the Swipe service
func NewRegistrar(appCtx *app.AppContext, engine *matching.Engine) *Registrar {
	return &Registrar{appCtx: appCtx, engine: engine}
}

// Register attaches the Swipe service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterSwipeServiceServer(s, NewSwipeService(r.appCtx, r.engine))
}
