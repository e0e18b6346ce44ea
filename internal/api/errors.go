package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/cuistot/backend/internal/schema"
	"github.com/pageza/cuistot/backend/internal/service"
)

var registerOnce sync.Once

// RegisterValidation makes binding errors report json field names
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

func validationFailed(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
}

// respondBindError answers a failed ShouldBind call
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		validationFailed(c, fields)
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// respondError maps domain errors onto HTTP answers
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		notFound  *service.NotFoundError
		conflict  *service.ConflictError
		malformed *schema.MalformedError
		invalid   *schema.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.Is(err, service.ErrDuplicateVote):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "You have already voted for this recipe"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, service.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.As(err, &conflict):
		validationFailed(c, map[string]string{conflict.Field: "is already taken"})
	case errors.As(err, &malformed):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "the recipe provider returned an unreadable answer"})
	case errors.As(err, &invalid):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":  "the recipe provider returned an invalid " + invalid.Shape,
			"fields": invalid.Fields,
		})
	case errors.Is(err, service.ErrProviderUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "the recipe provider is unavailable, try again later"})
	case errors.Is(err, service.ErrImagesDisabled):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "recipe images are not available"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
