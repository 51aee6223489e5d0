package service

import (
	"context"
	"sync"
	"time"

	"github.com/prn-tf/bookhive/internal/catalog/googlebooks"
	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// =============================================================================
// In-memory repository mocks
// =============================================================================

type mockUserRepository struct {
	users     map[string]*domain.User
	createErr error
	getErr    error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var result []*domain.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

type mockProfileRepository struct {
	profiles map[string]*domain.Profile
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[string]*domain.Profile)}
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if err := profile.DeriveAgeGroup(); err != nil {
		return err
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (m *mockProfileRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Profile, error) {
	var result []*domain.Profile
	for _, p := range m.profiles {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if err := profile.DeriveAgeGroup(); err != nil {
		return err
	}
	if _, ok := m.profiles[profile.ID]; !ok {
		return domain.ErrProfileNotFound
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.profiles[id]; !ok {
		return domain.ErrProfileNotFound
	}
	delete(m.profiles, id)
	return nil
}

type mockCuratedBookRepository struct {
	books map[string]*domain.CuratedBook
}

func newMockCuratedBookRepository() *mockCuratedBookRepository {
	return &mockCuratedBookRepository{books: make(map[string]*domain.CuratedBook)}
}

func (m *mockCuratedBookRepository) Create(ctx context.Context, book *domain.CuratedBook) error {
	m.books[book.ID] = book
	return nil
}

func (m *mockCuratedBookRepository) GetByID(ctx context.Context, id string) (*domain.CuratedBook, error) {
	if b, ok := m.books[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBookNotFound
}

func (m *mockCuratedBookRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.books[id]
	return ok, nil
}

func (m *mockCuratedBookRepository) List(ctx context.Context, ageGroup domain.AgeGroup) ([]*domain.CuratedBook, error) {
	var result []*domain.CuratedBook
	for _, b := range m.books {
		if ageGroup == "" || b.AgeGroup == ageGroup {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockCuratedBookRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

type mockExternalBookRepository struct {
	books map[string]*domain.ExternalBook
}

func newMockExternalBookRepository() *mockExternalBookRepository {
	return &mockExternalBookRepository{books: make(map[string]*domain.ExternalBook)}
}

func (m *mockExternalBookRepository) Create(ctx context.Context, book *domain.ExternalBook) error {
	m.books[book.ID] = book
	return nil
}

func (m *mockExternalBookRepository) GetByID(ctx context.Context, id string) (*domain.ExternalBook, error) {
	if b, ok := m.books[id]; ok {
		return b, nil
	}
	return nil, domain.ErrExternalBookNotFound
}

func (m *mockExternalBookRepository) GetByGoogleID(ctx context.Context, googleBookID string) (*domain.ExternalBook, error) {
	for _, b := range m.books {
		if b.GoogleBookID == googleBookID {
			return b, nil
		}
	}
	return nil, domain.ErrExternalBookNotFound
}

func (m *mockExternalBookRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.books)), nil
}

type mockFavoriteRepository struct {
	favorites map[string]*domain.Favorite
	createErr error
}

func newMockFavoriteRepository() *mockFavoriteRepository {
	return &mockFavoriteRepository{favorites: make(map[string]*domain.Favorite)}
}

func (m *mockFavoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	if m.createErr != nil {
		return m.createErr
	}
	if err := favorite.Validate(); err != nil {
		return err
	}
	for _, f := range m.favorites {
		if f.ProfileID == favorite.ProfileID && f.Ref == favorite.Ref {
			return domain.ErrDuplicateFavorite
		}
	}
	m.favorites[favorite.ID] = favorite
	return nil
}

func (m *mockFavoriteRepository) GetByID(ctx context.Context, id string) (*domain.Favorite, error) {
	if f, ok := m.favorites[id]; ok {
		return f, nil
	}
	return nil, domain.ErrFavoriteNotFound
}

func (m *mockFavoriteRepository) ListByProfile(ctx context.Context, profileID string) ([]*domain.Favorite, error) {
	var result []*domain.Favorite
	for _, f := range m.favorites {
		if f.ProfileID == profileID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockFavoriteRepository) FindByRef(ctx context.Context, profileID string, ref domain.BookRef) (*domain.Favorite, error) {
	for _, f := range m.favorites {
		if f.ProfileID == profileID && f.Ref == ref {
			return f, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockFavoriteRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.favorites[id]; !ok {
		return domain.ErrFavoriteNotFound
	}
	delete(m.favorites, id)
	return nil
}

func (m *mockFavoriteRepository) CountByProfile(ctx context.Context, profileID string) (int64, error) {
	var count int64
	for _, f := range m.favorites {
		if f.ProfileID == profileID {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// Cache and searcher mocks
// =============================================================================

type mockCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{items: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items[key]; ok {
		return v, nil
	}
	return nil, repository.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok, nil
}

type mockSearcher struct {
	results []googlebooks.Volume
	err     error
	calls   int
}

func (m *mockSearcher) Search(ctx context.Context, query string, limit int) ([]googlebooks.Volume, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// newTestRepositories bundles fresh mocks the way the wiring code does.
func newTestRepositories() *repository.Repositories {
	return &repository.Repositories{
		Users:         newMockUserRepository(),
		Profiles:      newMockProfileRepository(),
		CuratedBooks:  newMockCuratedBookRepository(),
		ExternalBooks: newMockExternalBookRepository(),
		Favorites:     newMockFavoriteRepository(),
	}
}
