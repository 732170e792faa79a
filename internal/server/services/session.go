package services

import (
	"sync"

	"github.com/chengshang-tools/launcher-auth/internal/server/models"
)

// CurrentSession is the process-wide single slot holding the signed-in
// principal. A new login replaces whatever it held.
type CurrentSession struct {
	mu   sync.RWMutex
	user *models.UserView
}

func NewCurrentSession() *CurrentSession {
	return &CurrentSession{}
}

// Get returns a copy of the signed-in user, if any.
func (c *CurrentSession) Get() (*models.UserView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.user == nil {
		return nil, false
	}
	v := *c.user
	return &v, true
}

func (c *CurrentSession) Set(v *models.UserView) {
	cp := *v
	c.mu.Lock()
	c.user = &cp
	c.mu.Unlock()
}

func (c *CurrentSession) Clear() {
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
}
