// Package project stores the documents users write, one JSON file for all
// users.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// DefaultTitle names projects created without a title.
const DefaultTitle = "Untitled Project"

// ErrNotFound is returned for unknown projects and for projects owned by
// another user.
var ErrNotFound = errors.New("project not found")

// Project is one saved document.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update lists the fields to change; nil fields are left alone.
type Update struct {
	Title       *string
	Content     *string
	Description *string
}

// Store keeps projects in memory and mirrors them to a JSON file.
type Store struct {
	projects map[string]*Project
	filePath string
	mutex    sync.RWMutex
	now      func() time.Time
}

// NewStore loads projects from filePath. An empty filePath keeps projects
// in memory only.
func NewStore(filePath string) (*Store, error) {
	s := &Store{
		projects: make(map[string]*Project),
		filePath: filePath,
		now:      time.Now,
	}
	if filePath == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for projects file: %w", err)
	}
	data, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		var projects []*Project
		if err := json.Unmarshal(data, &projects); err != nil {
			return nil, fmt.Errorf("failed to parse projects file: %w", err)
		}
		for _, p := range projects {
			s.projects[p.ID] = p
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read projects file: %w", err)
	}
	return s, nil
}

// Create stores a new project for userID.
func (s *Store) Create(userID, title, content, description string) (Project, error) {
	if strings.TrimSpace(userID) == "" {
		return Project{}, fmt.Errorf("user ID is required")
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	p := &Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Content:     norm.NFC.String(content),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.projects[p.ID] = p
	if err := s.save(); err != nil {
		delete(s.projects, p.ID)
		return Project{}, err
	}
	log.Printf("[Project] Created project %s for user %s", p.ID, userID)
	return *p, nil
}

// lookup finds a project owned by userID; the caller holds the lock.
func (s *Store) lookup(userID, id string) (*Project, error) {
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Get returns one of userID's projects.
func (s *Store) Get(userID, id string) (Project, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, err := s.lookup(userID, id)
	if err != nil {
		return Project{}, err
	}
	return *p, nil
}

// Update changes the given fields and bumps UpdatedAt.
func (s *Store) Update(userID, id string, u Update) (Project, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, err := s.lookup(userID, id)
	if err != nil {
		return Project{}, err
	}
	previous := *p
	if u.Title != nil {
		p.Title = *u.Title
		if strings.TrimSpace(p.Title) == "" {
			p.Title = DefaultTitle
		}
	}
	if u.Content != nil {
		p.Content = norm.NFC.String(*u.Content)
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	p.UpdatedAt = s.now()

	if err := s.save(); err != nil {
		*p = previous
		return Project{}, err
	}
	return *p, nil
}

// List returns userID's projects, most recently updated first.
func (s *Store) List(userID string) []Project {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var list []Project
	for _, p := range s.projects {
		if p.UserID == userID {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Delete removes one of userID's projects.
func (s *Store) Delete(userID, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, err := s.lookup(userID, id)
	if err != nil {
		return err
	}
	delete(s.projects, id)
	if err := s.save(); err != nil {
		s.projects[id] = p
		return err
	}
	log.Printf("[Project] Deleted project %s", id)
	return nil
}

// LoadContent returns a project's title and content for an editor session.
func (s *Store) LoadContent(userID, id string) (string, string, error) {
	p, err := s.Get(userID, id)
	if err != nil {
		return "", "", err
	}
	return p.Title, p.Content, nil
}

// SaveContent replaces a project's content with the editor's text.
func (s *Store) SaveContent(userID, id, content string) error {
	_, err := s.Update(userID, id, Update{Content: &content})
	return err
}

// save writes every project; the caller holds the lock.
func (s *Store) save() error {
	if s.filePath == "" {
		return nil
	}
	projects := make([]*Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })

	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal projects: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write projects file: %w", err)
	}
	return nil
}
