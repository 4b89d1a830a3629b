// Package memory holds map-backed repositories used when no DATABASE_URL is
// configured, and by tests. The three repositories share one Store so that
// profile deletion can cascade to links and reorders stay atomic.
package memory

import (
	"sync"
	"time"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	users        map[string]*entities.User
	usersByEmail map[string]string

	profiles         map[string]*entities.Profile
	profilesByHandle map[string]string
	profilesByUser   map[string]string

	links          map[string]*entities.Link
	linksByProfile map[string]map[string]struct{}

	now func() time.Time
}

func NewStore() *Store {
	s := &Store{now: func() time.Time { return time.Now().UTC() }}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = make(map[string]*entities.User)
	s.usersByEmail = make(map[string]string)
	s.profiles = make(map[string]*entities.Profile)
	s.profilesByHandle = make(map[string]string)
	s.profilesByUser = make(map[string]string)
	s.links = make(map[string]*entities.Link)
	s.linksByProfile = make(map[string]map[string]struct{})
}

// Clear drops every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) Users() repository.UserRepository       { return &userRepository{s: s} }
func (s *Store) Profiles() repository.ProfileRepository { return &profileRepository{s: s} }
func (s *Store) Links() repository.LinkRepository       { return &linkRepository{s: s} }

// Records are copied on the way in and out so callers never share memory with
// the store.

func copyUser(u *entities.User) *entities.User {
	c := *u
	return &c
}

func copyProfile(p *entities.Profile) *entities.Profile {
	c := *p
	c.Bio = copyString(p.Bio)
	c.AvatarURL = copyString(p.AvatarURL)
	return &c
}

func copyLink(l *entities.Link) *entities.Link {
	c := *l
	c.Icon = copyString(l.Icon)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
