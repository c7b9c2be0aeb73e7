package scenes

import (
	"github.com/decker502/boxpop/pkg/game"
)

// Scene is a type alias for game.Scene.
type Scene = game.Scene

var (
	_ Scene       = (*GameScene)(nil)
	_ game.Closer = (*GameScene)(nil)
)
