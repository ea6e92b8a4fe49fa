package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/leocezardev/pifc/models"
	"github.com/leocezardev/pifc/repository"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	store repository.Store
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(store repository.Store) *DatabaseSeeder {
	return &DatabaseSeeder{store: store}
}

// SeedDatabase seeds the database with demo data (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	if s.isSeedingComplete(ctx) {
		slog.Info("Database seeding already completed, skipping")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("auditor123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	auditor := models.User{
		Email:    "auditor@pifc.go.gov.br",
		Password: string(hashedPassword),
		FullName: "Auditor Demonstração",
		Role:     "auditor",
	}
	if err := s.seedUser(ctx, auditor); err != nil {
		slog.Error("Failed to seed user", "email", auditor.Email, "error", err)
		return err
	}

	contracts := []models.Contract{
		{
			Title:        "Sistema de Gestão de RH - Módulo Férias",
			SupplierName: "TechGoias Ltda",
			ContractDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Value:        "150000.00",
			Description:  "Desenvolvimento do módulo de férias do sistema de gestão de recursos humanos, incluindo fluxo de aprovação e integração com a folha de pagamento.",
			Status:       models.ContractStatusDraft,
		},
		{
			Title:        "Portal do Cidadão - Refatoração",
			SupplierName: "InovaGov Soluções",
			ContractDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Value:        "85000.50",
			Description:  "Refatoração do portal de serviços ao cidadão com melhorias de acessibilidade e desempenho.",
			Status:       models.ContractStatusDraft,
		},
	}

	for _, contract := range contracts {
		if err := s.seedContract(ctx, contract); err != nil {
			slog.Error("Failed to seed contract", "title", contract.Title, "error", err)
			return err
		}
	}

	slog.Info("Database seeding completed successfully")
	return nil
}

// isSeedingComplete treats any existing contract as evidence of a seeded
// (or in-use) database.
func (s *DatabaseSeeder) isSeedingComplete(ctx context.Context) bool {
	contracts, err := s.store.GetContracts(ctx)
	if err != nil {
		return false
	}
	return len(contracts) > 0
}

func (s *DatabaseSeeder) seedUser(ctx context.Context, user models.User) error {
	existing, err := s.store.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("User already exists, skipping", "email", user.Email)
		return nil
	}

	if err := s.store.CreateUser(ctx, &user); err != nil {
		return err
	}

	slog.Info("Seeded user", "email", user.Email)
	return nil
}

func (s *DatabaseSeeder) seedContract(ctx context.Context, contract models.Contract) error {
	if err := s.store.CreateContract(ctx, &contract); err != nil {
		return err
	}

	slog.Info("Seeded contract", "contract_id", contract.ID, "title", contract.Title)
	return nil
}
