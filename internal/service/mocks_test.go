package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/repository"
)

// In-memory repository fakes. They assign sequential ids the way the real
// repositories receive them from RETURNING clauses.

type mockIncidentRepo struct {
	mu        sync.Mutex
	seq       int
	incidents map[string]*domain.Incident
	failNext  error
}

func newMockIncidentRepo() *mockIncidentRepo {
	return &mockIncidentRepo{incidents: make(map[string]*domain.Incident)}
}

func (m *mockIncidentRepo) Create(ctx context.Context, incident *domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.seq++
	incident.ID = fmt.Sprintf("inc-%d", m.seq)
	incident.CreatedAt = time.Now()
	incident.UpdatedAt = incident.CreatedAt
	clone := *incident
	m.incidents[incident.ID] = &clone
	return nil
}

func (m *mockIncidentRepo) Update(ctx context.Context, incident *domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if _, ok := m.incidents[incident.ID]; !ok {
		return pgx.ErrNoRows
	}
	incident.UpdatedAt = time.Now()
	clone := *incident
	m.incidents[incident.ID] = &clone
	return nil
}

func (m *mockIncidentRepo) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	incident, ok := m.incidents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *incident
	return &clone, nil
}

func (m *mockIncidentRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.incidents[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.incidents, id)
	return nil
}

func (m *mockIncidentRepo) ListWithFilter(ctx context.Context, filter repository.IncidentFilter) ([]domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Incident
	for _, incident := range m.incidents {
		if len(filter.BuildingIDs) > 0 && !containsString(filter.BuildingIDs, incident.BuildingID) {
			continue
		}
		if filter.ReportedByID != nil && incident.ReportedByID != *filter.ReportedByID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, incident.Status) {
			continue
		}
		result = append(result, *incident)
	}
	// Same order the SQL listing produces: URGENTE first, newest first within a tier.
	sort.SliceStable(result, func(i, j int) bool {
		iUrgent := result[i].Priority == domain.IncidentPriorityUrgent
		jUrgent := result[j].Priority == domain.IncidentPriorityUrgent
		if iUrgent != jUrgent {
			return iUrgent
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockIncidentRepo) ListByVisit(ctx context.Context, visitID string) ([]domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Incident
	for _, incident := range m.incidents {
		if incident.VisitID != nil && *incident.VisitID == visitID {
			result = append(result, *incident)
		}
	}
	return result, nil
}

func (m *mockIncidentRepo) CountByBuilding(ctx context.Context, buildingID string, reportedByID *string) (map[domain.IncidentStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[domain.IncidentStatus]int)
	for _, incident := range m.incidents {
		if incident.BuildingID != buildingID {
			continue
		}
		if reportedByID != nil && incident.ReportedByID != *reportedByID {
			continue
		}
		counts[incident.Status]++
	}
	return counts, nil
}

type mockCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments []domain.Comment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{}
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	comment.ID = fmt.Sprintf("com-%d", m.seq)
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockCommentRepo) ListByIncident(ctx context.Context, incidentID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Comment
	for _, comment := range m.comments {
		if comment.IncidentID == incidentID {
			result = append(result, comment)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) byIncident(incidentID string) []domain.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Comment
	for _, comment := range m.comments {
		if comment.IncidentID == incidentID {
			result = append(result, comment)
		}
	}
	return result
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	repo := &mockUserRepo{users: make(map[string]*domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) AddMembership(ctx context.Context, userID, buildingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[userID]; ok {
		user.BuildingIDs = append(user.BuildingIDs, buildingID)
	}
	return nil
}

func (m *mockUserRepo) RemoveMembership(ctx context.Context, userID, buildingID string) error {
	return nil
}

func (m *mockUserRepo) ListByBuildingAndRole(ctx context.Context, buildingID string, role domain.Role) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.User
	for _, user := range m.users {
		if user.Role == role && user.MemberOf(buildingID) && user.Role != domain.RolePlatformAdmin {
			result = append(result, *user)
		}
	}
	return result, nil
}

type mockBuildingRepo struct {
	buildings map[string]*domain.Building
}

func newMockBuildingRepo(ids ...string) *mockBuildingRepo {
	repo := &mockBuildingRepo{buildings: make(map[string]*domain.Building)}
	for _, id := range ids {
		repo.buildings[id] = &domain.Building{ID: id, Name: "Edificio " + id, Active: true}
	}
	return repo
}

func (m *mockBuildingRepo) Create(ctx context.Context, building *domain.Building) error {
	m.buildings[building.ID] = building
	return nil
}

func (m *mockBuildingRepo) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	building, ok := m.buildings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return building, nil
}

func (m *mockBuildingRepo) List(ctx context.Context, ids []string) ([]domain.Building, error) {
	var result []domain.Building
	for _, building := range m.buildings {
		if ids == nil || containsString(ids, building.ID) {
			result = append(result, *building)
		}
	}
	return result, nil
}

type mockVisitRepo struct {
	mu     sync.Mutex
	seq    int
	visits map[string]*domain.Visit
}

func newMockVisitRepo() *mockVisitRepo {
	return &mockVisitRepo{visits: make(map[string]*domain.Visit)}
}

func (m *mockVisitRepo) Create(ctx context.Context, visit *domain.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	visit.ID = fmt.Sprintf("visit-%d", m.seq)
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = visit.CreatedAt
	clone := *visit
	m.visits[visit.ID] = &clone
	return nil
}

func (m *mockVisitRepo) Update(ctx context.Context, visit *domain.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.visits[visit.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *visit
	m.visits[visit.ID] = &clone
	return nil
}

func (m *mockVisitRepo) GetByID(ctx context.Context, id string) (*domain.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	visit, ok := m.visits[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *visit
	return &clone, nil
}

func (m *mockVisitRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.visits, id)
	return nil
}

func (m *mockVisitRepo) ListByBuildings(ctx context.Context, buildingIDs []string, limit, offset int) ([]domain.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Visit
	for _, visit := range m.visits {
		if buildingIDs == nil || containsString(buildingIDs, visit.BuildingID) {
			result = append(result, *visit)
		}
	}
	return result, nil
}

type mockCompanyRepo struct {
	companies map[string]*domain.Company
}

func newMockCompanyRepo(companies ...*domain.Company) *mockCompanyRepo {
	repo := &mockCompanyRepo{companies: make(map[string]*domain.Company)}
	for _, company := range companies {
		repo.companies[company.ID] = company
	}
	return repo
}

func (m *mockCompanyRepo) Create(ctx context.Context, company *domain.Company) error {
	m.companies[company.ID] = company
	return nil
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	company, ok := m.companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return company, nil
}

func (m *mockCompanyRepo) List(ctx context.Context) ([]domain.Company, error) {
	var result []domain.Company
	for _, company := range m.companies {
		result = append(result, *company)
	}
	return result, nil
}

type mockNotificationRepo struct {
	mu            sync.Mutex
	seq           int
	notifications []domain.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	notification.ID = fmt.Sprintf("notif-%d", m.seq)
	notification.CreatedAt = time.Now()
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Notification
	for _, notification := range m.notifications {
		if notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		result = append(result, notification)
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].UserID == userID {
			m.notifications[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockNotificationRepo) forUser(userID string) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Notification
	for _, notification := range m.notifications {
		if notification.UserID == userID {
			result = append(result, notification)
		}
	}
	return result
}

type mockProductRepo struct {
	mu       sync.Mutex
	seq      int
	products map[string]*domain.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[string]*domain.Product)}
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	product.ID = fmt.Sprintf("prod-%d", m.seq)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *product
	return &clone, nil
}

func (m *mockProductRepo) ListByBuilding(ctx context.Context, buildingID string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Product
	for _, product := range m.products {
		if product.BuildingID == buildingID {
			result = append(result, *product)
		}
	}
	return result, nil
}

func (m *mockProductRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return pgx.ErrNoRows
	}
	product.Stock = stock
	return nil
}

type mockMovementRepo struct {
	mu        sync.Mutex
	seq       int
	movements []domain.StockMovement
	failNext  error
}

func newMockMovementRepo() *mockMovementRepo {
	return &mockMovementRepo{}
}

func (m *mockMovementRepo) Create(ctx context.Context, movement *domain.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.seq++
	movement.ID = fmt.Sprintf("mov-%d", m.seq)
	movement.CreatedAt = time.Now()
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *mockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.StockMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.StockMovement
	for _, movement := range m.movements {
		if movement.ProductID == productID {
			result = append(result, movement)
		}
	}
	return result, nil
}

// mockTxManager runs the function directly; the fakes have no transactional
// state to roll back, so tests assert on observable partial effects instead.
type mockTxManager struct{}

func (mockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func containsString(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}

func containsStatus(list []domain.IncidentStatus, val domain.IncidentStatus) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
