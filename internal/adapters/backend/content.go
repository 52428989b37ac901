package backend

import (
	"context"
	"net/url"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type Content struct {
	*resource
}

func (c *Content) List(ctx context.Context, category string) ([]domain.Content, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}

	return listOf[domain.Content](ctx, c.resource, get("/content", query), "Error fetching content", "content", "contents", "items")
}

func (c *Content) Get(ctx context.Context, id string) (domain.Content, error) {
	if err := checkID("content", id); err != nil {
		return domain.Content{}, err
	}

	return oneOf[domain.Content](ctx, c.resource, get("/content/"+id, nil), "Error fetching content", "content", "item")
}

func (c *Content) Create(ctx context.Context, input domain.ContentInput) (domain.Content, error) {
	if err := c.validator.check("content", input); err != nil {
		return domain.Content{}, err
	}

	return oneOf[domain.Content](ctx, c.resource, post("/content", input), "Error creating content", "content", "item")
}

func (c *Content) Update(ctx context.Context, id string, input domain.ContentInput) (domain.Content, error) {
	if err := checkID("content", id); err != nil {
		return domain.Content{}, err
	}
	if err := c.validator.check("content", input); err != nil {
		return domain.Content{}, err
	}

	return oneOf[domain.Content](ctx, c.resource, put("/content/"+id, input), "Error updating content", "content", "item")
}

func (c *Content) Delete(ctx context.Context, id string) error {
	if err := checkID("content", id); err != nil {
		return err
	}

	_, err := c.send(ctx, del("/content/"+id), "Error deleting content")
	return err
}
