package validate_test

import (
	"testing"

	"github.com/crowdfork/crowdfork/pkg/validate"
)

type reviewInput struct {
	RestaurantID string   `json:"restaurant_id" validate:"required"`
	Rating       *float64 `json:"rating"        validate:"required,between=0,5"`
	Text         string   `json:"text"          validate:"nullable,max=20"`
	PriceRange   string   `json:"price_range"   validate:"nullable,in=$,$$,$$$,$$$$"`
	FoodRating   *float64 `json:"food_rating"   validate:"nullable,gte=0,lte=5"`
}

func ptr(f float64) *float64 { return &f }

func TestValidInput(t *testing.T) {
	errs := validate.Struct(reviewInput{RestaurantID: "r1", Rating: ptr(4.5), PriceRange: "$$"})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredPointerAcceptsZero(t *testing.T) {
	errs := validate.Struct(reviewInput{RestaurantID: "r1", Rating: ptr(0)})
	if validate.HasErrors(errs) {
		t.Errorf("expected rating 0 to pass, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(&reviewInput{})
	if _, ok := errs["restaurant_id"]; !ok {
		t.Error("expected restaurant_id to be required")
	}
	if _, ok := errs["rating"]; !ok {
		t.Error("expected rating to be required")
	}
}

func TestBetweenOnPointer(t *testing.T) {
	errs := validate.Struct(reviewInput{RestaurantID: "r1", Rating: ptr(5.5)})
	if got := errs["rating"]; got != "The rating must be between 0 and 5." {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestNullableSkipsNil(t *testing.T) {
	errs := validate.Struct(reviewInput{RestaurantID: "r1", Rating: ptr(1), FoodRating: nil})
	if validate.HasErrors(errs) {
		t.Errorf("expected nil food_rating to be skipped, got: %v", errs)
	}

	errs = validate.Struct(reviewInput{RestaurantID: "r1", Rating: ptr(1), FoodRating: ptr(-1)})
	if _, ok := errs["food_rating"]; !ok {
		t.Error("expected negative food_rating to fail")
	}
}

func TestInRuleWithDollarList(t *testing.T) {
	errs := validate.Struct(reviewInput{RestaurantID: "r1", Rating: ptr(1), PriceRange: "$$$$$"})
	if _, ok := errs["price_range"]; !ok {
		t.Error("expected $$$$$ to be rejected")
	}
}

func TestMaxLength(t *testing.T) {
	errs := validate.Struct(reviewInput{RestaurantID: "r1", Rating: ptr(1), Text: "this text is far too long"})
	if _, ok := errs["text"]; !ok {
		t.Error("expected text over 20 chars to fail")
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	if errs := validate.Struct(in{Email: "not-an-email"}); !validate.HasErrors(errs) {
		t.Error("expected email validation error")
	}
	if errs := validate.Struct(in{Email: "valid@example.com"}); validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestURLRule(t *testing.T) {
	type in struct {
		ImageURL string `json:"image_url" validate:"nullable,url"`
	}
	if errs := validate.Struct(in{ImageURL: "ftp://x"}); !validate.HasErrors(errs) {
		t.Error("expected ftp URL to fail")
	}
	if errs := validate.Struct(in{}); validate.HasErrors(errs) {
		t.Errorf("expected empty URL to pass, got: %v", errs)
	}
}
