// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package appointment

import "context"

// Repository is the remote appointment API.
type Repository interface {
	Create(ctx context.Context, booking *Appointment) (*Appointment, error)
	CreateAnonymous(ctx context.Context, booking *Appointment) (*Appointment, error)
	ListMine(ctx context.Context) ([]*Appointment, error)
	Get(ctx context.Context, id string) (*Appointment, error)
	Update(ctx context.Context, id string, changes *Appointment) (*Appointment, error)
	Cancel(ctx context.Context, id string) (*Appointment, error)
	Rate(ctx context.Context, id string, rating int, comment string) (*Appointment, error)

	ListAll(ctx context.Context) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error)
	Stats(ctx context.Context) (*Stats, error)
}
