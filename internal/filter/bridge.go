package filter

import (
	"github.com/jimezsa/clockedin/internal/loop"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/prefs"
)

// Bridge turns block-list changes in a store into rescans on the loop.
type Bridge struct {
	area   prefs.Area
	sched  loop.Scheduler
	rescan func(models.BlockList)
}

func NewBridge(area prefs.Area, sched loop.Scheduler, rescan func(models.BlockList)) *Bridge {
	return &Bridge{area: area, sched: sched, rescan: rescan}
}

// Attach subscribes to store. The returned func unsubscribes.
func (b *Bridge) Attach(store prefs.Store) func() {
	return store.Subscribe(b.handle)
}

func (b *Bridge) handle(change prefs.Change) {
	if change.Key != prefs.KeyCompanyTags || change.Area != b.area {
		return
	}
	list := prefs.DecodeBlockList(change.NewValue)
	b.sched.Post(func() { b.rescan(list) })
}
