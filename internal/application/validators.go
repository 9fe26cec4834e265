package application

import (
	"github.com/go-playground/validator/v10"
)

// Package-level validator instance shared by session parameter and
// configuration validation. Uses go-playground/validator v10 for
// struct tag-based validation; semantic checks that tags cannot
// express live next to the structs they validate.
var validate = validator.New()
