package products

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/handling"
	"bengaliboutique_server/lib"
	"bengaliboutique_server/services"
	"net/http"
	"strconv"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// readReview accepts a JSON body or the product page's form.
func readReview(r *http.Request) (services.ReviewInput, error) {
	if handling.IsJSONBody(r) {
		body, err := lib.ExtractAndValidateBody[services.ReviewInput](r)
		if err != nil {
			return services.ReviewInput{}, err
		}
		return *body, nil
	}

	rating, _ := strconv.Atoi(r.PostFormValue("rating"))
	return services.ReviewInput{
		Rating: rating,
		Text:   r.PostFormValue("text"),
	}, nil
}

// AddReview handles POST /products/{slug}/reviews
func (prm *ProductRoutesManager) AddReview(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	input, err := readReview(r)
	if err != nil {
		handling.HandleError(err, "error.review.invalidRequestBody", prm.logger, w)
		return
	}

	review, err := prm.reviewService.AddReview(r.Context(), claims, slug, input)
	if err != nil {
		handling.HandleError(err, "error.review.failedToAdd", prm.logger, w)
		return
	}

	if !lib.IsAJAX(r) {
		lib.SetFlash(prm.cfg.FlashCookie, "Review added!", w)
		http.Redirect(w, r, "/products/"+slug, http.StatusSeeOther)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.review.added"),
		gecho.WithData(review),
		gecho.Send(),
	)
}
