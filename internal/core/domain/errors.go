package domain

import "errors"

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("invalid quantity")
)
