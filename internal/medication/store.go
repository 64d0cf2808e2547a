// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package medication

import "context"

// Repository persists medication records. Every lookup takes the owner id so
// a record can never leak across accounts.
type Repository interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Medication, int, error)
	FindByID(ctx context.Context, userID, id string) (*Medication, error)
	Create(ctx context.Context, medication *Medication) error
	Update(ctx context.Context, medication *Medication) error
	SoftDelete(ctx context.Context, userID, id string) error
}
