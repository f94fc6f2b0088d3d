package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "ecshop/internal/repository"
)

type ProductUsecase struct {
	products repo.ProductRepository
	infos    repo.ProductInfoRepository
}

// DI
func NewProductUsecase(products repo.ProductRepository, infos repo.ProductInfoRepository) *ProductUsecase {
	return &ProductUsecase{products: products, infos: infos}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
}

type ProductListOutput struct {
	Items []repo.ProductRow `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type ListingDetail struct {
	repo.ListingRow
	Parameters []repo.ParameterRow `json:"parameters"`
}

type ProductDetail struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	CategoryID int64           `json:"category_id"`
	Category   string          `json:"category"`
	Listings   []ListingDetail `json:"listings"`
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid q")
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          in.Q,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return ProductListOutput{}, errDB
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// Get は商品とショップごとの出品（価格・在庫・属性）を返す
func (u *ProductUsecase) Get(ctx context.Context, id int64) (ProductDetail, error) {
	if id <= 0 {
		return ProductDetail{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetail{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductDetail{}, errDB
	}

	listings, err := u.infos.ListByProductID(ctx, p.ID)
	if err != nil {
		return ProductDetail{}, errDB
	}
	ids := make([]int64, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	params, err := u.infos.ListParameters(ctx, ids)
	if err != nil {
		return ProductDetail{}, errDB
	}
	byInfo := make(map[int64][]repo.ParameterRow)
	for _, pr := range params {
		byInfo[pr.ProductInfoID] = append(byInfo[pr.ProductInfoID], pr)
	}

	out := ProductDetail{
		ID:         p.ID,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Category:   p.CategoryName,
		Listings:   make([]ListingDetail, 0, len(listings)),
	}
	for _, l := range listings {
		ps := byInfo[l.ID]
		if ps == nil {
			ps = []repo.ParameterRow{}
		}
		out.Listings = append(out.Listings, ListingDetail{ListingRow: l, Parameters: ps})
	}
	return out, nil
}
