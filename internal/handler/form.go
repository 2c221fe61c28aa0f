package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pawnest/service-marketplace/internal/application"
	"github.com/pawnest/service-marketplace/internal/domain/listing"
	"github.com/pawnest/service-marketplace/internal/domain/pet"
)

// Multipart form values arrive as strings, so typed fields are coerced in a
// single pass here. An optional field whose value does not parse is treated
// as absent rather than failing the request.

func formString(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

func formInt(c *gin.Context, key string) *int {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func formFloat(c *gin.Context, key string) *float64 {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	return &f
}

func formBool(c *gin.Context, key string) *bool {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &b
}

func formDecimal(c *gin.Context, key string) *decimal.Decimal {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &d
}

// formList reads a repeated form key, splitting single comma-separated values.
func formList(c *gin.Context, key string) []string {
	values, ok := c.GetPostFormArray(key)
	if !ok {
		return nil
	}
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// formJSON decodes a form value holding a JSON document into target, treating
// absence and malformed JSON as no value.
func formJSON(c *gin.Context, key string, target interface{}) bool {
	v, ok := c.GetPostForm(key)
	if !ok || v == "" {
		return false
	}
	return json.Unmarshal([]byte(v), target) == nil
}

// petFieldsFromForm decodes the typed pet profile fields from a multipart form.
func petFieldsFromForm(c *gin.Context) application.PetFields {
	fields := application.PetFields{
		Name:         formString(c, "name"),
		Breed:        formString(c, "breed"),
		AgeYears:     formInt(c, "age_years"),
		WeightKg:     formFloat(c, "weight_kg"),
		Color:        formString(c, "color"),
		SpecialNeeds: formString(c, "special_needs"),
		Vaccinated:   formBool(c, "vaccinated"),
		Microchipped: formBool(c, "microchipped"),
		Medications:  formList(c, "medications"),
		Allergies:    formList(c, "allergies"),
	}
	if v := formString(c, "species"); v != nil {
		s := pet.Species(strings.ToLower(*v))
		fields.Species = &s
	}
	if v := formString(c, "gender"); v != nil {
		g := pet.Gender(strings.ToLower(*v))
		fields.Gender = &g
	}
	var vet pet.VetInfo
	if formJSON(c, "vet_info", &vet) {
		fields.VetInfo = &vet
	}
	return fields
}

// listingFieldsFromForm decodes the typed listing fields from a multipart form.
func listingFieldsFromForm(c *gin.Context) application.ListingFields {
	fields := application.ListingFields{
		Title:          formString(c, "title"),
		Description:    formString(c, "description"),
		Price:          formDecimal(c, "price"),
		InstantBooking: formBool(c, "instant_booking"),
	}
	if v := formString(c, "service_type"); v != nil {
		t := listing.ServiceType(strings.ToLower(*v))
		fields.ServiceType = &t
	}
	if v := formString(c, "price_type"); v != nil {
		t := listing.PriceType(strings.ToLower(*v))
		fields.PriceType = &t
	}
	if types := formList(c, "pet_types"); len(types) > 0 {
		species := make([]pet.Species, len(types))
		for i, t := range types {
			species[i] = pet.Species(strings.ToLower(t))
		}
		fields.PetTypes = species
	}
	var loc listing.Location
	if formJSON(c, "location", &loc) {
		fields.Location = &loc
	}
	var availability []listing.AvailabilityWindow
	if formJSON(c, "availability", &availability) {
		fields.Availability = availability
	}
	return fields
}
