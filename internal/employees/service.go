package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
)

const minPasswordLength = 4

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// Service manages till operators.
type Service interface {
	List(ctx context.Context) ([]EmployeeDTO, error)
	Get(ctx context.Context, id int64) (*EmployeeDTO, error)
	Create(ctx context.Context, input CreateInput) (*EmployeeDTO, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*EmployeeDTO, error)
	Delete(ctx context.Context, id int64) error
}

type CreateInput struct {
	Name        string
	Password    string
	HoursWorked decimal.Decimal
	// ManagerID nil creates a manager.
	ManagerID *int64
}

// UpdateInput leaves nil fields untouched. ClearManager promotes the employee
// to manager and wins over ManagerID.
type UpdateInput struct {
	Name         *string
	Password     *string
	HoursWorked  *decimal.Decimal
	ManagerID    *int64
	ClearManager bool
}

type service struct {
	tx     txRunner
	repo   *Repository
	hasher passwordHasher
}

func NewService(tx txRunner, repo *Repository, hasher passwordHasher) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("employees repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	return &service{tx: tx, repo: repo, hasher: hasher}, nil
}

func (s *service) List(ctx context.Context) ([]EmployeeDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list employees")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id int64) (*EmployeeDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return FromModel(row), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*EmployeeDTO, error) {
	employee := &models.Employee{
		Name:        strings.TrimSpace(input.Name),
		HoursWorked: input.HoursWorked,
		ManagerID:   input.ManagerID,
	}
	if err := validate(employee); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	employee.PasswordHash = hash

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureManager(ctx, repo, employee.ManagerID); err != nil {
			return err
		}
		if err := repo.Create(ctx, employee); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create employee")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(employee), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*EmployeeDTO, error) {
	var hash string
	if input.Password != nil {
		var err error
		if hash, err = s.hashPassword(*input.Password); err != nil {
			return nil, err
		}
	}

	var updated *models.Employee
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		employee, err := repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err)
		}
		if input.Name != nil {
			employee.Name = strings.TrimSpace(*input.Name)
		}
		if input.HoursWorked != nil {
			employee.HoursWorked = *input.HoursWorked
		}
		if hash != "" {
			employee.PasswordHash = hash
		}
		switch {
		case input.ClearManager:
			employee.ManagerID = nil
		case input.ManagerID != nil:
			if *input.ManagerID == employee.ID {
				return pkgerrors.New(pkgerrors.CodeValidation, "an employee cannot manage themselves")
			}
			reports, err := repo.CountReports(ctx, employee.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count reports")
			}
			if reports > 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "employee still manages other employees")
			}
			if err := ensureManager(ctx, repo, input.ManagerID); err != nil {
				return err
			}
			employee.ManagerID = input.ManagerID
		}
		if err := validate(employee); err != nil {
			return err
		}
		if err := repo.Save(ctx, employee); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update employee")
		}
		updated = employee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete refuses to remove a manager with reports: the schema would null
// their manager_id and silently promote them.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		reports, err := repo.CountReports(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count reports")
		}
		if reports > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "employee still manages other employees")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return lookupError(err)
		}
		return nil
	})
}

func (s *service) hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return hash, nil
}

func ensureManager(ctx context.Context, repo *Repository, managerID *int64) error {
	if managerID == nil {
		return nil
	}
	manager, err := repo.FindByID(ctx, *managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "manager_id does not reference an employee")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load manager")
	}
	if manager.ManagerID != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "manager_id must reference a manager")
	}
	return nil
}

func validate(e *models.Employee) error {
	switch {
	case e.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case e.HoursWorked.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "hours_worked must not be negative")
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load employee")
}
