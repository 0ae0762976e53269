package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/RaviiSharma/Amazon-Clone/repository"
	"github.com/RaviiSharma/Amazon-Clone/service"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
)

// ProductController handles product-related requests
type ProductController struct {
	Products  repository.ProductRepository
	UploadDir string
	Logger    *slog.Logger
	Timeout   time.Duration
}

// NewProductController creates a new ProductController
func NewProductController(products repository.ProductRepository, uploadDir string, logger *slog.Logger, timeout time.Duration) *ProductController {
	return &ProductController{Products: products, UploadDir: uploadDir, Logger: logger, Timeout: timeout}
}

// CreateProduct adds a catalog entry from a multipart form
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(utils.MaxUploadMemory); err != nil {
		badRequest(w, "product data is required as multipart form")
		return
	}

	product := models.Product{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Style:       strings.TrimSpace(r.FormValue("style")),
	}
	if !utils.IsValidInputValue(product.Title) {
		badRequest(w, "title is required")
		return
	}
	if !utils.IsValidInputValue(product.Description) {
		badRequest(w, "description is required")
		return
	}

	priceStr := strings.TrimSpace(r.FormValue("price"))
	if !utils.IsValidPrice(priceStr) {
		badRequest(w, "price is required and should be a positive amount")
		return
	}
	product.Price = models.MustMoney(priceStr)

	currencyID := strings.ToUpper(strings.TrimSpace(r.FormValue("currencyId")))
	if currencyID == "" {
		currencyID = "INR"
	}
	symbol, ok := utils.CurrencySymbol(currencyID)
	if !ok {
		badRequest(w, "currencyId "+currencyID+" is not supported")
		return
	}
	if format, sent := formValue(r, "currencyFormat"); sent && format != symbol {
		badRequest(w, "currencyFormat should be "+symbol+" for "+currencyID)
		return
	}
	product.CurrencyID = currencyID
	product.CurrencyFormat = symbol

	if v, sent := formValue(r, "isFreeShipping"); sent {
		if !utils.IsValidBool(v) {
			badRequest(w, "isFreeShipping should be true or false")
			return
		}
		product.IsFreeShipping = v == "true"
	}

	sizes, err := parseSizes(r.FormValue("availableSizes"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	product.AvailableSizes = sizes

	if v, sent := formValue(r, "installments"); sent {
		if !utils.IsValidNumber(v) {
			badRequest(w, "installments should be a whole number")
			return
		}
		product.Installments, _ = strconv.Atoi(v)
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	taken, err := pc.Products.TitleTaken(ctx, product.Title)
	if err != nil {
		respondServiceError(w, pc.Logger, err)
		return
	}
	if taken {
		badRequest(w, "title "+product.Title+" is already in use")
		return
	}

	imagePath, err := utils.SaveImage(r, "productImage", pc.UploadDir, "products")
	if err != nil {
		pc.respondUploadError(w, err)
		return
	}
	product.ProductImage = imagePath

	if err := pc.Products.Create(ctx, &product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			badRequest(w, "title "+product.Title+" is already in use")
			return
		}
		respondServiceError(w, pc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, "product created successfully", product)
}

// GetProducts lists live products matching the query filters
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter repository.ProductFilter

	if v := strings.TrimSpace(query.Get("size")); v != "" {
		sizes, err := parseSizes(v)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		filter.Sizes = sizes
	}
	filter.Name = strings.TrimSpace(query.Get("name"))

	for _, bound := range []struct {
		key string
		dst **models.Money
	}{
		{"priceGreaterThan", &filter.PriceGreaterThan},
		{"priceLessThan", &filter.PriceLessThan},
	} {
		v := strings.TrimSpace(query.Get(bound.key))
		if v == "" {
			continue
		}
		m, err := models.NewMoney(v)
		if err != nil || m.IsNegative() {
			badRequest(w, bound.key+" should be a valid amount")
			return
		}
		*bound.dst = &m
	}
	if filter.PriceGreaterThan != nil && filter.PriceLessThan != nil &&
		filter.PriceGreaterThan.GreaterThanOrEqual(filter.PriceLessThan.Decimal) {
		badRequest(w, "priceGreaterThan should be less than priceLessThan")
		return
	}

	switch v := strings.TrimSpace(query.Get("priceSort")); v {
	case "":
	case "1":
		filter.PriceSort = 1
	case "-1":
		filter.PriceSort = -1
	default:
		badRequest(w, "priceSort should be 1 or -1")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()
	products, err := pc.Products.List(ctx, filter)
	if err != nil {
		respondServiceError(w, pc.Logger, err)
		return
	}
	if len(products) == 0 {
		utils.RespondError(w, http.StatusNotFound, string(service.KindNotFound), "no products found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, "products", products)
}

// GetProduct retrieves a live product by ID
func (pc *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseObjectID(w, mux.Vars(r)["productId"], "productId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()
	product, err := pc.Products.GetByID(ctx, productID)
	if err != nil {
		respondServiceError(w, pc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "product details", product)
}

// UpdateProduct applies the fields present in the multipart form
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseObjectID(w, mux.Vars(r)["productId"], "productId")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(utils.MaxUploadMemory); err != nil {
		badRequest(w, "data to update is required as multipart form")
		return
	}

	set := bson.M{}
	title, titleSent := formValue(r, "title")
	if titleSent {
		set["title"] = title
	}
	if v, sent := formValue(r, "description"); sent {
		set["description"] = v
	}
	if v, sent := formValue(r, "style"); sent {
		set["style"] = v
	}
	if v, sent := formValue(r, "price"); sent {
		if !utils.IsValidPrice(v) {
			badRequest(w, "price should be a positive amount")
			return
		}
		set["price"] = models.MustMoney(v)
	}
	if v, sent := formValue(r, "currencyId"); sent {
		symbol, ok := utils.CurrencySymbol(v)
		if !ok {
			badRequest(w, "currencyId "+v+" is not supported")
			return
		}
		set["currency_id"] = strings.ToUpper(v)
		set["currency_format"] = symbol
	}
	if v, sent := formValue(r, "isFreeShipping"); sent {
		if !utils.IsValidBool(v) {
			badRequest(w, "isFreeShipping should be true or false")
			return
		}
		set["is_free_shipping"] = v == "true"
	}
	if v, sent := formValue(r, "availableSizes"); sent {
		sizes, err := parseSizes(v)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		set["available_sizes"] = sizes
	}
	if v, sent := formValue(r, "installments"); sent {
		if !utils.IsValidNumber(v) {
			badRequest(w, "installments should be a whole number")
			return
		}
		n, _ := strconv.Atoi(v)
		set["installments"] = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	if titleSent {
		taken, err := pc.Products.TitleTaken(ctx, title)
		if err != nil {
			respondServiceError(w, pc.Logger, err)
			return
		}
		if taken {
			badRequest(w, "title "+title+" is already in use")
			return
		}
	}

	if r.MultipartForm != nil && len(r.MultipartForm.File["productImage"]) > 0 {
		imagePath, err := utils.SaveImage(r, "productImage", pc.UploadDir, "products")
		if err != nil {
			pc.respondUploadError(w, err)
			return
		}
		set["product_image"] = imagePath
	}

	if len(set) == 0 {
		badRequest(w, "nothing to update")
		return
	}

	product, err := pc.Products.Update(ctx, productID, set)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			badRequest(w, "title "+title+" is already in use")
			return
		}
		respondServiceError(w, pc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "product updated", product)
}

// DeleteProduct soft deletes a product
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseObjectID(w, mux.Vars(r)["productId"], "productId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()
	if err := pc.Products.SoftDelete(ctx, productID); err != nil {
		respondServiceError(w, pc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "product deleted successfully", nil)
}

func (pc *ProductController) respondUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrNoImage):
		badRequest(w, "productImage is required")
	case errors.Is(err, utils.ErrInvalidImage):
		badRequest(w, err.Error())
	default:
		respondServiceError(w, pc.Logger, err)
	}
}

// parseSizes accepts a JSON array (["S","M"]) or a comma list (S,M).
func parseSizes(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("availableSizes is required")
	}

	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return nil, errors.New("availableSizes should be an array of sizes")
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	sizes := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		size := strings.ToUpper(strings.TrimSpace(p))
		if size == "" || seen[size] {
			continue
		}
		if !utils.IsValidSize(size, models.AvailableSizes) {
			return nil, errors.New("size " + size + " is not one of " + strings.Join(models.AvailableSizes, ", "))
		}
		seen[size] = true
		sizes = append(sizes, size)
	}
	if len(sizes) == 0 {
		return nil, errors.New("availableSizes is required")
	}
	return sizes, nil
}
