package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/RaviiSharma/Amazon-Clone/repository"
	"github.com/RaviiSharma/Amazon-Clone/service"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// CartProvisioner creates the empty cart every new user starts with.
type CartProvisioner interface {
	CreateCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
}

// UserController handles user-related requests
type UserController struct {
	Users      repository.UserRepository
	Carts      CartProvisioner
	Tokens     *utils.TokenManager
	Mailer     utils.Mailer
	UploadDir  string
	Logger     *slog.Logger
	Timeout    time.Duration
	bcryptCost int
}

// NewUserController creates a new UserController
func NewUserController(users repository.UserRepository, carts CartProvisioner, tokens *utils.TokenManager, mailer utils.Mailer, uploadDir string, logger *slog.Logger, timeout time.Duration) *UserController {
	return &UserController{
		Users:      users,
		Carts:      carts,
		Tokens:     tokens,
		Mailer:     mailer,
		UploadDir:  uploadDir,
		Logger:     logger,
		Timeout:    timeout,
		bcryptCost: bcrypt.DefaultCost,
	}
}

type addressLineInput struct {
	Street  string      `json:"street"`
	City    string      `json:"city"`
	Pincode json.Number `json:"pincode"`
}

type addressInput struct {
	Shipping *addressLineInput `json:"shipping"`
	Billing  *addressLineInput `json:"billing"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user from a multipart form and provisions its cart
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(utils.MaxUploadMemory); err != nil {
		badRequest(w, "user data is required as multipart form")
		return
	}

	user := models.User{
		FName: strings.TrimSpace(r.FormValue("fname")),
		LName: strings.TrimSpace(r.FormValue("lname")),
		Email: strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		Phone: strings.TrimSpace(r.FormValue("phone")),
	}
	password := r.FormValue("password")

	switch {
	case !utils.IsValidOnlyCharacters(user.FName):
		badRequest(w, "fname is required and should contain only alphabets")
		return
	case !utils.IsValidOnlyCharacters(user.LName):
		badRequest(w, "lname is required and should contain only alphabets")
		return
	case !utils.IsValidEmail(user.Email):
		badRequest(w, "email is required and should be valid")
		return
	case !utils.IsValidPhone(user.Phone):
		badRequest(w, "phone is required and should be a valid indian mobile number")
		return
	case !utils.IsValidPassword(password):
		badRequest(w, "password should be 8-15 characters with at least one letter and one number")
		return
	}

	address, err := parseAddress(r.FormValue("address"), true)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	user.Address = models.Address{Shipping: address.shipping, Billing: address.billing}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	if ok := uc.checkUnique(ctx, w, &user, primitive.NilObjectID); !ok {
		return
	}

	imagePath, err := utils.SaveImage(r, "profileImage", uc.UploadDir, "profiles")
	if err != nil {
		uc.respondUploadError(w, err)
		return
	}
	user.ProfileImage = imagePath

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if err != nil {
		respondServiceError(w, uc.Logger, err)
		return
	}
	user.Password = string(hashedPassword)

	if err := uc.Users.Create(ctx, &user); err != nil {
		uc.removeUpload(imagePath)
		if errors.Is(err, repository.ErrDuplicate) {
			badRequest(w, "email or phone is already registered")
			return
		}
		respondServiceError(w, uc.Logger, err)
		return
	}

	// A user must never exist without a cart, so a failed provision undoes
	// the registration.
	if _, err := uc.Carts.CreateCart(ctx, user.ID); err != nil {
		uc.Logger.Error("cart provisioning failed, rolling back user", "user_id", user.ID.Hex(), "error", err)
		if delErr := uc.Users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			uc.Logger.Error("failed to roll back user", "user_id", user.ID.Hex(), "error", delErr)
		}
		uc.removeUpload(imagePath)
		respondServiceError(w, uc.Logger, err)
		return
	}

	if uc.Mailer != nil {
		go func(u models.User) {
			if err := utils.SendWelcomeEmail(uc.Mailer, &u); err != nil {
				uc.Logger.Warn("failed to send welcome email", "to", u.Email, "error", err)
			}
		}(user)
	}

	utils.RespondJSON(w, http.StatusCreated, "user created successfully", user)
}

// Login checks the credentials and issues an access token
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid input")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(email) {
		badRequest(w, "email is required and should be valid")
		return
	}
	if !utils.IsValidInputValue(req.Password) {
		badRequest(w, "password is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()
	user, err := uc.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, string(service.KindNotFound), "no user found by "+email)
			return
		}
		respondServiceError(w, uc.Logger, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		badRequest(w, "incorrect password")
		return
	}

	token, err := uc.Tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		respondServiceError(w, uc.Logger, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondJSON(w, http.StatusOK, "user login successful", map[string]string{
		"userId": user.ID.Hex(),
		"token":  token,
	})
}

// GetProfile returns the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()
	user, err := uc.Users.GetByID(ctx, userID)
	if err != nil {
		respondServiceError(w, uc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "user profile details", user)
}

// UpdateProfile applies the fields present in the multipart form
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(utils.MaxUploadMemory); err != nil {
		badRequest(w, "data to update is required as multipart form")
		return
	}

	set := bson.M{}
	candidate := models.User{}

	if v, ok := formValue(r, "fname"); ok {
		if !utils.IsValidOnlyCharacters(v) {
			badRequest(w, "fname should contain only alphabets")
			return
		}
		set["fname"] = v
	}
	if v, ok := formValue(r, "lname"); ok {
		if !utils.IsValidOnlyCharacters(v) {
			badRequest(w, "lname should contain only alphabets")
			return
		}
		set["lname"] = v
	}
	if v, ok := formValue(r, "email"); ok {
		v = strings.ToLower(v)
		if !utils.IsValidEmail(v) {
			badRequest(w, "email should be valid")
			return
		}
		set["email"] = v
		candidate.Email = v
	}
	if v, ok := formValue(r, "phone"); ok {
		if !utils.IsValidPhone(v) {
			badRequest(w, "phone should be a valid indian mobile number")
			return
		}
		set["phone"] = v
		candidate.Phone = v
	}
	if v, ok := formValue(r, "password"); ok {
		if !utils.IsValidPassword(v) {
			badRequest(w, "password should be 8-15 characters with at least one letter and one number")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(v), uc.bcryptCost)
		if err != nil {
			respondServiceError(w, uc.Logger, err)
			return
		}
		set["password"] = string(hashed)
	}
	if v, ok := formValue(r, "address"); ok {
		address, err := parseAddress(v, false)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		for k, val := range address.partial {
			set["address."+k] = val
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	if ok := uc.checkUnique(ctx, w, &candidate, userID); !ok {
		return
	}

	if r.MultipartForm != nil && len(r.MultipartForm.File["profileImage"]) > 0 {
		imagePath, err := utils.SaveImage(r, "profileImage", uc.UploadDir, "profiles")
		if err != nil {
			uc.respondUploadError(w, err)
			return
		}
		set["profile_image"] = imagePath
	}

	if len(set) == 0 {
		badRequest(w, "nothing to update")
		return
	}

	user, err := uc.Users.Update(ctx, userID, set)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			badRequest(w, "email or phone is already registered")
			return
		}
		respondServiceError(w, uc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "user profile updated", user)
}

// checkUnique rejects an email or phone already held by a user other than except.
func (uc *UserController) checkUnique(ctx context.Context, w http.ResponseWriter, user *models.User, except primitive.ObjectID) bool {
	fields := []struct{ field, value string }{
		{"email", user.Email},
		{"phone", user.Phone},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		taken, err := uc.Users.Taken(ctx, f.field, f.value, except)
		if err != nil {
			respondServiceError(w, uc.Logger, err)
			return false
		}
		if taken {
			badRequest(w, f.field+" "+f.value+" is already registered")
			return false
		}
	}
	return true
}

func (uc *UserController) removeUpload(path string) {
	if err := os.Remove(filepath.FromSlash(path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		uc.Logger.Warn("failed to remove uploaded image", "path", path, "error", err)
	}
}

func (uc *UserController) respondUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrNoImage):
		badRequest(w, "profileImage is required")
	case errors.Is(err, utils.ErrInvalidImage):
		badRequest(w, err.Error())
	default:
		respondServiceError(w, uc.Logger, err)
	}
}

type parsedAddress struct {
	shipping models.AddressLine
	billing  models.AddressLine
	// partial holds the dotted bson paths of the fields that were sent.
	partial bson.M
}

// parseAddress decodes the address JSON sent inside a form field. With
// complete every line field is required; otherwise only sent fields are
// validated and collected into partial.
func parseAddress(raw string, complete bool) (*parsedAddress, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("address is required")
	}
	var in addressInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, errors.New("address should be a valid JSON object")
	}

	out := &parsedAddress{partial: bson.M{}}
	lines := []struct {
		name string
		in   *addressLineInput
		out  *models.AddressLine
	}{
		{"shipping", in.Shipping, &out.shipping},
		{"billing", in.Billing, &out.billing},
	}
	for _, l := range lines {
		if l.in == nil {
			if complete {
				return nil, errors.New(l.name + " address is required")
			}
			continue
		}
		street := strings.TrimSpace(l.in.Street)
		city := strings.TrimSpace(l.in.City)
		pincode := strings.TrimSpace(l.in.Pincode.String())

		if street != "" || complete {
			if !utils.IsValidInputValue(street) {
				return nil, errors.New(l.name + " street is required")
			}
			l.out.Street = street
			out.partial[l.name+".street"] = street
		}
		if city != "" || complete {
			if !utils.IsValidOnlyCharacters(city) {
				return nil, errors.New(l.name + " city is required and should contain only alphabets")
			}
			l.out.City = city
			out.partial[l.name+".city"] = city
		}
		if pincode != "" || complete {
			if !utils.IsValidPincode(pincode) {
				return nil, errors.New(l.name + " pincode should be a valid 6 digit number")
			}
			n, _ := strconv.Atoi(pincode)
			l.out.Pincode = n
			out.partial[l.name+".pincode"] = n
		}
	}
	return out, nil
}

// formValue returns a trimmed form field and whether it was sent non-empty.
func formValue(r *http.Request, key string) (string, bool) {
	v := strings.TrimSpace(r.FormValue(key))
	return v, v != ""
}
