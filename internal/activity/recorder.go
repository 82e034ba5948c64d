package activity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ActionCreateOrder     = "CREATE_ORDER"
	ActionUpdateOrder     = "UPDATE_ORDER"
	ActionImportInventory = "IMPORT_INVENTORY"
	ActionCreateProduct   = "CREATE_PRODUCT"
	ActionUpdateProduct   = "UPDATE_PRODUCT"
	ActionDeleteProduct   = "DELETE_PRODUCT"
	ActionCreateAttribute = "CREATE_ATTRIBUTE"
	ActionCreateCategory  = "CREATE_CATEGORY"
	ActionUpdateCategory  = "UPDATE_CATEGORY"
	ActionDeleteCategory  = "DELETE_CATEGORY"
	ActionCreateCustomer  = "CREATE_CUSTOMER"
	ActionUpdateCustomer  = "UPDATE_CUSTOMER"
	ActionDeleteCustomer  = "DELETE_CUSTOMER"
	ActionCreatePromotion = "CREATE_PROMOTION"
	ActionUpdatePromotion = "UPDATE_PROMOTION"
	ActionDeletePromotion = "DELETE_PROMOTION"
	ActionRegisterUser    = "REGISTER_USER"
	ActionResetPassword   = "RESET_PASSWORD"
)

// Entry is one audit trail row. ID makes redelivery from Kafka harmless.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Multi records to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Trail is the best-effort front the services use: failures are logged,
// never returned. A nil *Trail records nothing.
type Trail struct {
	Recorder Recorder
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func (t *Trail) Record(ctx context.Context, userID, action, detail string) {
	if t == nil || t.Recorder == nil {
		return
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	e := Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		CreatedAt: now().UTC(),
	}
	if err := t.Recorder.Record(ctx, e); err != nil && t.Log != nil {
		t.Log.WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"user_id": userID,
		}).Warn("activity record failed")
	}
}
