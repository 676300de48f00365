package types

import (
	"sync/atomic"
	"time"

	"github.com/goland-express/herald/player"
)

// BotData is the process state handlers reach through registry.Context.Data.
type BotData struct {
	StartTime time.Time

	player atomic.Pointer[player.Player]
}

// Player returns the music player, or nil while it is not connected.
func (d *BotData) Player() *player.Player {
	return d.player.Load()
}

func (d *BotData) SetPlayer(p *player.Player) {
	d.player.Store(p)
}
