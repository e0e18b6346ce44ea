package types

// LoginRequest is the body of POST /api/auth
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=50"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Confirmation string `json:"confirmation" binding:"required,eqfield=Password"`
}

// SettingsRequest replaces every diet, allergy and preference of a user
type SettingsRequest struct {
	Diets       []string `json:"diets" binding:"required,dive,required,max=100"`
	Allergies   []string `json:"allergies" binding:"required,dive,required,max=100"`
	Preferences []string `json:"preferences" binding:"required,dive,required,max=100"`
}

// SettingsResponse is the body of GET /api/user/settings
type SettingsResponse struct {
	Diets       []string `json:"diets"`
	Allergies   []string `json:"allergies"`
	Preferences []string `json:"preferences"`
}

// RatingRequest is the body of POST /api/recipes/:name/comments
type RatingRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// CommentRequest is the body of POST /api/recipes/:name/comments/:id
type CommentRequest struct {
	Comment string `json:"comment" binding:"max=2000"`
}

// ImageUploadRequest is the body of PUT /api/recipes/:name/image
type ImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required,oneof=image/jpeg image/png image/webp"`
}
