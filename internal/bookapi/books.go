package bookapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

func (c *Client) TopBooks(ctx context.Context) ([]domain.Book, error) {
	return c.listBooks(ctx, "/book/top")
}

func (c *Client) NewReleases(ctx context.Context) ([]domain.Book, error) {
	return c.listBooks(ctx, "/book/new-release")
}

func (c *Client) RecommendedBooks(ctx context.Context) ([]domain.Book, error) {
	return c.listBooks(ctx, "/book/recommendations")
}

func (c *Client) listBooks(ctx context.Context, path string) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

type searchRequest struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

type searchResponse struct {
	Result *domain.BookPage `json:"book_searched_successfully"`
}

// SearchBooks runs a title search. page is zero based.
func (c *Client) SearchBooks(ctx context.Context, title string, page, size int) (domain.BookPage, error) {
	var resp searchResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/book/search",
		body:   searchRequest{Title: title, Page: page, Size: size},
	}, &resp)
	if err != nil {
		return domain.BookPage{}, err
	}
	if resp.Result == nil {
		return domain.BookPage{Content: []domain.Book{}, Number: page, Size: size}, nil
	}
	if resp.Result.Content == nil {
		resp.Result.Content = []domain.Book{}
	}
	return *resp.Result, nil
}

// BookByISBN returns ErrNotFound (via errors.Is) when the catalog has no such book.
func (c *Client) BookByISBN(ctx context.Context, token, isbn string) (domain.Book, error) {
	var book domain.Book
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/book/isbn/" + url.PathEscape(isbn),
		token:  token,
	}, &book)
	return book, err
}

// SaveBook creates the book, or updates it when book.ID is set.
func (c *Client) SaveBook(ctx context.Context, token string, book domain.Book) (domain.Book, error) {
	var saved domain.Book
	err := c.do(ctx, request{method: http.MethodPost, path: "/book", token: token, body: book}, &saved)
	if err != nil {
		return domain.Book{}, err
	}
	if saved.ID == 0 {
		saved = book
	}
	return saved, nil
}

func (c *Client) DeactivateBook(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/book/%d/deactivate", id),
		token:  token,
	}, nil)
}
