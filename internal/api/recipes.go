package api

import (
	"net/http"
	"strconv"

	"marketplace-service/internal/recipe"

	"github.com/gin-gonic/gin"
)

// calculateRecipe scales a recipe and matches its ingredients. Servings default to 1.
func (h *Handler) calculateRecipe(c *gin.Context) {
	recipeID, ok := parseIDParam(c, "id", "recipe")
	if !ok {
		return
	}

	servings := 1
	if raw := c.Query("servings"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(c, "calculate recipe", &recipe.ValidationError{Field: "servings", Message: "must be an integer"})
			return
		}
		servings = v
	}

	calc, err := h.recipeService.CalculateRecipe(c.Request.Context(), recipeID, servings)
	if err != nil {
		h.writeError(c, "calculate recipe", err)
		return
	}
	if calc == nil {
		notFound(c, "recipe")
		return
	}

	c.JSON(http.StatusOK, calc)
}
