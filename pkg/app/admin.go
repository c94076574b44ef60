package app

import (
	"context"
	"sync"

	"github.com/tasklight/tasklight.go/pkg/api"
	"github.com/tasklight/tasklight.go/pkg/models"
)

// AdminPanel is the controller behind the user-management page. It must only
// be loaded once the session is confirmed admin; the acting admin can never
// target their own account, both in what is rendered and in what the
// controller will send. Safe for concurrent use.
type AdminPanel struct {
	api    *api.Client
	selfID uint

	mu     sync.RWMutex
	users  []models.User
	banner string
}

// NewAdminPanel creates a panel acting as the admin with the given user id.
func NewAdminPanel(client *api.Client, selfID uint) *AdminPanel {
	return &AdminPanel{api: client, selfID: selfID}
}

// Load fetches the full user list.
func (p *AdminPanel) Load(ctx context.Context) bool {
	res := p.api.ListUsers(ctx)
	if !res.Ok() {
		p.setBanner(res.Err())
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = res.Value()
	return true
}

// Users returns a copy of the local user list.
func (p *AdminPanel) Users() []models.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.User, len(p.users))
	copy(out, p.users)
	return out
}

// CanModify reports whether action controls may be shown for a row. The row
// matching the acting admin's own id never gets any.
func (p *AdminPanel) CanModify(id uint) bool {
	return id != p.selfID
}

// SetAdmin toggles another user's admin flag. The local row is replaced with
// the server's returned user; targeting the acting admin is refused without
// a network call.
func (p *AdminPanel) SetAdmin(ctx context.Context, id uint, isAdmin bool) bool {
	if !p.CanModify(id) {
		return false
	}
	res := p.api.SetUserAdmin(ctx, id, isAdmin)
	if !res.Ok() {
		p.setBanner(res.Err())
		return false
	}
	updated := res.Value()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.users {
		if p.users[i].ID == updated.ID {
			p.users[i] = updated
			break
		}
	}
	return true
}

// DeleteUser deletes another user's account. The caller passes confirmed
// only after an explicit interactive confirmation; without it no call is
// issued. The local row is removed only after the server confirms.
func (p *AdminPanel) DeleteUser(ctx context.Context, id uint, confirmed bool) bool {
	if !confirmed || !p.CanModify(id) {
		return false
	}
	res := p.api.DeleteUser(ctx, id)
	if !res.Ok() {
		p.setBanner(res.Err())
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.users[:0]
	for _, u := range p.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	p.users = kept
	return true
}

// Banner returns the current error message, empty when none.
func (p *AdminPanel) Banner() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.banner
}

// DismissBanner clears the error banner.
func (p *AdminPanel) DismissBanner() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.banner = ""
}

func (p *AdminPanel) setBanner(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.banner = msg
}
