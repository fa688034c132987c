package service

import (
	"sync"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/testutil"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(evt ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) ofType(t string) []ws.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []ws.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	company   *model.Company
	products  repository.ProductRepository
	history   repository.StockHistoryRepository
	sales     repository.TransactionRepository
	publisher *recordingPublisher
	cashier   Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	company := testutil.SeedCompany(t, db, "MAIN")
	return &fixture{
		db:        db,
		company:   company,
		products:  repository.NewProductRepo(db),
		history:   repository.NewStockHistoryRepo(db),
		sales:     repository.NewTransactionRepo(db),
		publisher: &recordingPublisher{},
		cashier:   cashierOf(company.ID),
	}
}

func cashierOf(companyID uuid.UUID) Actor {
	id := companyID
	return Actor{UserID: uuid.New(), Name: "Ana Cashier", Email: "ana@example.com", CompanyID: &id, RoleCode: model.RoleCashier}
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Name: "Root", Email: "root@example.com", RoleCode: model.RoleAdmin}
}

func (f *fixture) stockService() StockService {
	return NewStockService(f.db, f.products, f.history, f.publisher, nil)
}

func (f *fixture) transactionService() TransactionService {
	return NewTransactionService(f.db, f.products, f.history, f.sales, f.publisher, nil)
}

func (f *fixture) inventoryService() InventoryService {
	return NewInventoryService(f.db, f.products, f.history, f.publisher)
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	if err := f.db.Unscoped().First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return p.Stock
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
