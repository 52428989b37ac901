package backend

import (
	"context"
	"net/url"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type FuelRequests struct {
	*resource
}

func (f *FuelRequests) List(ctx context.Context, filter domain.FuelRequestFilter) ([]domain.FuelRequest, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}

	return listOf[domain.FuelRequest](ctx, f.resource, get("/fuel-requests", withLimit(query, filter.Limit)),
		"Error fetching fuel requests", "requests", "fuelRequests")
}

func (f *FuelRequests) Get(ctx context.Context, id string) (domain.FuelRequest, error) {
	if err := checkID("fuel request", id); err != nil {
		return domain.FuelRequest{}, err
	}

	return oneOf[domain.FuelRequest](ctx, f.resource, get("/fuel-requests/"+id, nil),
		"Error fetching fuel request", "request", "fuelRequest")
}

func (f *FuelRequests) Create(ctx context.Context, input domain.FuelRequestInput) (domain.FuelRequest, error) {
	if err := f.validator.check("fuel request", input); err != nil {
		return domain.FuelRequest{}, err
	}

	return oneOf[domain.FuelRequest](ctx, f.resource, post("/fuel-requests", input),
		"Error creating fuel request", "request", "fuelRequest")
}

func (f *FuelRequests) Update(ctx context.Context, id string, input domain.FuelRequestInput) (domain.FuelRequest, error) {
	if err := checkID("fuel request", id); err != nil {
		return domain.FuelRequest{}, err
	}
	if err := f.validator.check("fuel request", input); err != nil {
		return domain.FuelRequest{}, err
	}

	return oneOf[domain.FuelRequest](ctx, f.resource, put("/fuel-requests/"+id, input),
		"Error updating fuel request", "request", "fuelRequest")
}

func (f *FuelRequests) Delete(ctx context.Context, id string) error {
	if err := checkID("fuel request", id); err != nil {
		return err
	}

	_, err := f.send(ctx, del("/fuel-requests/"+id), "Error deleting fuel request")
	return err
}

type statusChange struct {
	Status domain.FuelRequestStatus `json:"status"`
	Notes  string                   `json:"notes,omitempty"`
}

func (f *FuelRequests) UpdateStatus(ctx context.Context, id string, status domain.FuelRequestStatus, notes string) (domain.FuelRequest, error) {
	if err := checkID("fuel request", id); err != nil {
		return domain.FuelRequest{}, err
	}
	if _, err := domain.ParseFuelRequestStatus(string(status)); err != nil {
		return domain.FuelRequest{}, invalid("Invalid fuel request status", err)
	}

	return oneOf[domain.FuelRequest](ctx, f.resource, put("/fuel-requests/"+id+"/status", statusChange{Status: status, Notes: notes}),
		"Error updating request status", "request", "fuelRequest")
}

type assignment struct {
	ProducerID string `json:"producerId"`
}

func (f *FuelRequests) Assign(ctx context.Context, id string, producerID string) (domain.FuelRequest, error) {
	if err := checkID("fuel request", id); err != nil {
		return domain.FuelRequest{}, err
	}
	if err := checkID("producer", producerID); err != nil {
		return domain.FuelRequest{}, err
	}

	return oneOf[domain.FuelRequest](ctx, f.resource, put("/fuel-requests/"+id+"/assign", assignment{ProducerID: producerID}),
		"Error assigning producer", "request", "fuelRequest")
}
