package handlers

import (
	"net/http"
	"strings"

	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks a roster without scheduling it
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Drivers) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one driver is required",
		})
		return
	}

	if len(input.Riders) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one rider is required",
		})
		return
	}

	if err := h.Validator.Validate(input.Riders, input.Drivers); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid":  false,
			"error":  "Roster has problems",
			"issues": strings.Split(err.Error(), "\n"),
		})
		return
	}

	seats := 0
	for _, d := range input.Drivers {
		seats += d.Seats
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"rider_count":  len(input.Riders),
			"driver_count": len(input.Drivers),
			"seat_count":   seats,
		},
	})
}
