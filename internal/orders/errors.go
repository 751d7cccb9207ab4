package orders

import (
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
)

func invalidCart(message string, details map[string]any) error {
	err := pkgerrors.New(pkgerrors.CodeInvalidCart, message)
	if len(details) > 0 {
		err = err.WithDetails(details)
	}
	return err
}

// IsInvalidCart reports whether err rejected the cart before or during placement.
func IsInvalidCart(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeInvalidCart)
}

// IsReferentialGap reports whether err came from a reference that no longer exists.
func IsReferentialGap(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeReferentialGap)
}

// storeError classifies a failed statement. Foreign key violations mean a
// menu item or component was removed under the cart.
func storeError(err error, op string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeReferentialGap, err, op)
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, op)
}
