package backend

import (
	"context"
	"net/url"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type WasteEntries struct {
	*resource
}

func (w *WasteEntries) List(ctx context.Context, filter domain.WasteEntryFilter) ([]domain.WasteEntry, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.WasteType != "" {
		query.Set("wasteType", filter.WasteType)
	}

	return listOf[domain.WasteEntry](ctx, w.resource, get("/waste-entries", withLimit(query, filter.Limit)),
		"Error fetching waste entries", "entries", "wasteEntries")
}

func (w *WasteEntries) Get(ctx context.Context, id string) (domain.WasteEntry, error) {
	if err := checkID("waste entry", id); err != nil {
		return domain.WasteEntry{}, err
	}

	return oneOf[domain.WasteEntry](ctx, w.resource, get("/waste-entries/"+id, nil),
		"Error fetching waste entry", "entry", "wasteEntry")
}

func (w *WasteEntries) Create(ctx context.Context, input domain.WasteEntryInput) (domain.WasteEntry, error) {
	if err := w.validator.check("waste entry", input); err != nil {
		return domain.WasteEntry{}, err
	}

	return oneOf[domain.WasteEntry](ctx, w.resource, post("/waste-entries", input),
		"Error submitting waste entry", "entry", "wasteEntry")
}

func (w *WasteEntries) Update(ctx context.Context, id string, input domain.WasteEntryInput) (domain.WasteEntry, error) {
	if err := checkID("waste entry", id); err != nil {
		return domain.WasteEntry{}, err
	}
	if err := w.validator.check("waste entry", input); err != nil {
		return domain.WasteEntry{}, err
	}

	return oneOf[domain.WasteEntry](ctx, w.resource, put("/waste-entries/"+id, input),
		"Error updating waste entry", "entry", "wasteEntry")
}

func (w *WasteEntries) Delete(ctx context.Context, id string) error {
	if err := checkID("waste entry", id); err != nil {
		return err
	}

	_, err := w.send(ctx, del("/waste-entries/"+id), "Error deleting waste entry")
	return err
}

func (w *WasteEntries) Verify(ctx context.Context, id string, decision domain.VerificationDecision) (domain.WasteEntry, error) {
	if err := checkID("waste entry", id); err != nil {
		return domain.WasteEntry{}, err
	}
	if err := w.validator.check("verification", decision); err != nil {
		return domain.WasteEntry{}, err
	}

	return oneOf[domain.WasteEntry](ctx, w.resource, put("/waste-entries/"+id+"/verify", decision),
		"Error verifying waste entry", "entry", "wasteEntry")
}
