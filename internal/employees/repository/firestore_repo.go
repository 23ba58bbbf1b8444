package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
)

// FirestoreRepository keeps employees in a Firestore collection.
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreRepository(client *firestore.Client, collection string) *FirestoreRepository {
	if collection == "" {
		collection = "employees"
	}
	return &FirestoreRepository{client: client, collection: collection}
}

func (r *FirestoreRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, error) {
	q := r.client.Collection(r.collection).Query
	if filter.Department != "" {
		q = q.Where("department", "==", filter.Department)
	}
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}

	docs, err := q.OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.collection, err)
	}

	out := make([]*domain.Employee, 0, len(docs))
	for _, doc := range docs {
		var e domain.Employee
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.ID, err)
		}
		e.ID = doc.Ref.ID
		out = append(out, &e)
	}
	return out, nil
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*domain.Employee, error) {
	ref := r.doc(id)
	if ref == nil {
		return nil, domain.ErrNotFound
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, translateFirestoreError(err)
	}

	var e domain.Employee
	if err := snap.DataTo(&e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	e.ID = snap.Ref.ID
	return &e, nil
}

// Insert lets Firestore assign the document id. A single Add is atomic.
func (r *FirestoreRepository) Insert(ctx context.Context, e *domain.Employee) (string, error) {
	ref, _, err := r.client.Collection(r.collection).Add(ctx, e)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Patch uses Update, which fails with NotFound instead of creating the document.
func (r *FirestoreRepository) Patch(ctx context.Context, id string, req domain.UpdateEmployeeRequest, now time.Time) error {
	ref := r.doc(id)
	if ref == nil {
		return domain.ErrNotFound
	}
	if _, err := ref.Update(ctx, patchUpdates(req, now)); err != nil {
		return translateFirestoreError(err)
	}
	return nil
}

// Delete requires the document to exist so a missing id surfaces as NotFound.
func (r *FirestoreRepository) Delete(ctx context.Context, id string) error {
	ref := r.doc(id)
	if ref == nil {
		return domain.ErrNotFound
	}
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		return translateFirestoreError(err)
	}
	return nil
}

// doc returns nil for ids Firestore cannot address (empty or containing '/').
func (r *FirestoreRepository) doc(id string) *firestore.DocumentRef {
	if id == "" {
		return nil
	}
	return r.client.Collection(r.collection).Doc(id)
}

func patchUpdates(req domain.UpdateEmployeeRequest, now time.Time) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, v *string) {
		if v != nil {
			updates = append(updates, firestore.Update{Path: path, Value: *v})
		}
	}
	add("firstName", req.FirstName)
	add("lastName", req.LastName)
	add("email", req.Email)
	add("department", req.Department)
	add("position", req.Position)
	if req.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: string(*req.Status)})
	}
	add("profileImage", req.ProfileImage)
	return append(updates, firestore.Update{Path: "updatedAt", Value: now})
}

func translateFirestoreError(err error) error {
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotFound
	}
	return err
}
