package cartview

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/soukly/soukly-backend/internal/guestcart"
	"github.com/soukly/soukly-backend/pkg/db/models"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/types"
)

// Entry is one render-ready cart line joined to its product snapshot.
type Entry struct {
	LineID   uuid.UUID      `json:"line_id"`
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Cart is the canonical derived view over guest or account lines. It is
// recomputed on every load; only the selection is persisted.
type Cart struct {
	Entries     []Entry     `json:"entries"`
	SelectedIDs []uuid.UUID `json:"selected_ids"`
}

// IsSelected reports whether the line id is in the selected subset.
func (c *Cart) IsSelected(lineID uuid.UUID) bool {
	for _, id := range c.SelectedIDs {
		if id == lineID {
			return true
		}
	}
	return false
}

// SelectedEntries returns the entries in the selected subset, in cart order.
func (c *Cart) SelectedEntries() []Entry {
	selected := make([]Entry, 0, len(c.SelectedIDs))
	for _, entry := range c.Entries {
		if c.IsSelected(entry.LineID) {
			selected = append(selected, entry)
		}
	}
	return selected
}

type guestLineReader interface {
	Items(ctx context.Context, deviceToken string) ([]guestcart.Line, error)
}

type accountLineReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AccountCartItem, error)
}

type productReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service reconciles cart sources into the canonical view and owns the
// selection state.
type Service interface {
	Load(ctx context.Context, identity types.Identity) (*Cart, error)
	Toggle(ctx context.Context, identity types.Identity, lineID uuid.UUID) (*Cart, error)
	ToggleAll(ctx context.Context, identity types.Identity) (*Cart, error)
}

type service struct {
	guest     guestLineReader
	account   accountLineReader
	products  productReader
	selection SelectionStore
}

// NewService wires the reconciler with its line sources and stores.
func NewService(guest guestLineReader, account accountLineReader, products productReader, selection SelectionStore) (Service, error) {
	if guest == nil {
		return nil, fmt.Errorf("guest line reader required")
	}
	if account == nil {
		return nil, fmt.Errorf("account line reader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if selection == nil {
		return nil, fmt.Errorf("selection store required")
	}
	return &service{guest: guest, account: account, products: products, selection: selection}, nil
}

type sourceLine struct {
	lineID    uuid.UUID
	productID uuid.UUID
	quantity  int
}

// Load joins the identity's lines to product snapshots, drops lines whose
// product is gone or not purchasable, and reconciles the stored selection.
// The selection is initialized to all lines exactly once, when the cart
// first turns non-empty; afterwards only toggles change it.
func (s *service) Load(ctx context.Context, identity types.Identity) (*Cart, error) {
	lines, err := s.sourceLines(ctx, identity)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.productID)
	}
	snapshots, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product snapshots")
	}
	byID := make(map[uuid.UUID]models.Product, len(snapshots))
	for _, snapshot := range snapshots {
		byID[snapshot.ID] = snapshot
	}

	cart := &Cart{Entries: make([]Entry, 0, len(lines)), SelectedIDs: []uuid.UUID{}}
	for _, line := range lines {
		snapshot, ok := byID[line.productID]
		if !ok || !snapshot.Purchasable() {
			continue
		}
		cart.Entries = append(cart.Entries, Entry{
			LineID:   line.lineID,
			Product:  snapshot,
			Quantity: line.quantity,
		})
	}

	if err := s.reconcileSelection(ctx, identity, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Toggle flips one line in or out of the selected subset.
func (s *service) Toggle(ctx context.Context, identity types.Identity, lineID uuid.UUID) (*Cart, error) {
	cart, err := s.Load(ctx, identity)
	if err != nil {
		return nil, err
	}
	found := false
	for _, entry := range cart.Entries {
		if entry.LineID == lineID {
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}

	if cart.IsSelected(lineID) {
		next := make([]uuid.UUID, 0, len(cart.SelectedIDs)-1)
		for _, id := range cart.SelectedIDs {
			if id != lineID {
				next = append(next, id)
			}
		}
		cart.SelectedIDs = next
	} else {
		cart.SelectedIDs = append(cart.SelectedIDs, lineID)
	}

	if err := s.selection.Save(ctx, identity.Key(), cart.SelectedIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart selection")
	}
	return cart, nil
}

// ToggleAll flips between select-all and select-none.
func (s *service) ToggleAll(ctx context.Context, identity types.Identity) (*Cart, error) {
	cart, err := s.Load(ctx, identity)
	if err != nil {
		return nil, err
	}
	if len(cart.SelectedIDs) == len(cart.Entries) {
		cart.SelectedIDs = []uuid.UUID{}
	} else {
		all := make([]uuid.UUID, 0, len(cart.Entries))
		for _, entry := range cart.Entries {
			all = append(all, entry.LineID)
		}
		cart.SelectedIDs = all
	}
	if err := s.selection.Save(ctx, identity.Key(), cart.SelectedIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart selection")
	}
	return cart, nil
}

func (s *service) sourceLines(ctx context.Context, identity types.Identity) ([]sourceLine, error) {
	if identity.IsAccount() {
		items, err := s.account.ListByUser(ctx, identity.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account cart")
		}
		lines := make([]sourceLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, sourceLine{lineID: item.ID, productID: item.ProductID, quantity: item.Quantity})
		}
		return lines, nil
	}

	items, err := s.guest.Items(ctx, identity.DeviceToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
	}
	lines := make([]sourceLine, 0, len(items))
	for _, item := range items {
		// Guest lines have no server id; the product id doubles as line id.
		lines = append(lines, sourceLine{lineID: item.ProductID, productID: item.ProductID, quantity: item.Quantity})
	}
	return lines, nil
}

func (s *service) reconcileSelection(ctx context.Context, identity types.Identity, cart *Cart) error {
	key := identity.Key()
	if len(cart.Entries) == 0 {
		// An empty cart resets the selection lifecycle so the next
		// non-empty load re-initializes to select-all.
		if err := s.selection.Drop(ctx, key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop cart selection")
		}
		cart.SelectedIDs = []uuid.UUID{}
		return nil
	}

	stored, found, err := s.selection.Load(ctx, key)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart selection")
	}
	if !found {
		all := make([]uuid.UUID, 0, len(cart.Entries))
		for _, entry := range cart.Entries {
			all = append(all, entry.LineID)
		}
		cart.SelectedIDs = all
		if err := s.selection.Save(ctx, key, all); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart selection")
		}
		return nil
	}

	valid := make(map[uuid.UUID]struct{}, len(cart.Entries))
	for _, entry := range cart.Entries {
		valid[entry.LineID] = struct{}{}
	}
	pruned := make([]uuid.UUID, 0, len(stored))
	for _, id := range stored {
		if _, ok := valid[id]; ok {
			pruned = append(pruned, id)
		}
	}
	cart.SelectedIDs = pruned
	if len(pruned) != len(stored) {
		if err := s.selection.Save(ctx, key, pruned); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart selection")
		}
	}
	return nil
}
