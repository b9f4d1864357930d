// Package httpapi is the REST facade around the core, addressing cells by
// A1 notation and serializing a sheet.Sheet's cells over HTTP.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/gosheetlab/sheetcore/internal/logging"
	"github.com/gosheetlab/sheetcore/internal/notify"
	"github.com/gosheetlab/sheetcore/internal/persistence"
	"github.com/gosheetlab/sheetcore/internal/position"
	"github.com/gosheetlab/sheetcore/internal/sheet"
)

var logger = logging.New("httpapi")

type CellResponse struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

type SetCellRequest struct {
	Value string `json:"value" binding:"required"`
}

type SubscribeRequest struct {
	WebhookURL string `json:"webhook_url"`
}

type Controller struct {
	registry   *Registry
	store      *persistence.Store
	dispatcher *notify.Dispatcher
}

func NewController(registry *Registry, store *persistence.Store, dispatcher *notify.Dispatcher) *Controller {
	return &Controller{registry: registry, store: store, dispatcher: dispatcher}
}

type cellURIParams struct {
	SheetID string `uri:"sheet_id" binding:"required"`
	CellID  string `uri:"cell_id" binding:"required"`
}

type sheetURIParams struct {
	SheetID string `uri:"sheet_id" binding:"required"`
}

func (ctl *Controller) SetCellAction(c *gin.Context) {
	var params cellURIParams
	var request SetCellRequest

	if err := c.ShouldBindUri(&params); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pos, err := position.Parse(params.CellID)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sheetID := strings.ToLower(params.SheetID)

	var response CellResponse
	err = ctl.registry.WithOrCreate(sheetID, func(sht *sheet.Sheet) error {
		if setErr := sht.SetCell(pos, request.Value); setErr != nil {
			return setErr
		}
		cell, _ := sht.GetCell(pos)
		response = renderCell(cell)
		return nil
	})

	if err != nil {
		writeJSON(c, http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if ctl.store != nil {
		if saveErr := ctl.store.SaveCell(sheetID, pos, request.Value); saveErr != nil {
			logger.Printf("persist cell %s/%s: %s", sheetID, pos, saveErr)
		}
	}

	if ctl.dispatcher != nil {
		ctl.dispatcher.Notify(sheetID, []notify.CellUpdate{
			{Position: pos.String(), Text: response.Text, Value: response.Value},
		})
	}

	writeJSON(c, http.StatusCreated, response)
}

func (ctl *Controller) GetCellAction(c *gin.Context) {
	var params cellURIParams
	if err := c.ShouldBindUri(&params); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pos, err := position.Parse(params.CellID)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var response CellResponse
	err = ctl.registry.WithExisting(strings.ToLower(params.SheetID), func(sht *sheet.Sheet) error {
		cell, getErr := sht.GetCell(pos)
		if getErr != nil {
			return getErr
		}
		if cell == nil {
			return errCellNotFound
		}
		response = renderCell(cell)
		return nil
	})

	switch {
	case errors.Is(err, ErrSheetNotFound), errors.Is(err, errCellNotFound):
		writeJSON(c, http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		writeJSON(c, http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		writeJSON(c, http.StatusOK, response)
	}
}

func (ctl *Controller) GetSheetAction(c *gin.Context) {
	var params sheetURIParams
	if err := c.ShouldBindUri(&params); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cells := map[string]CellResponse{}

	err := ctl.registry.WithExisting(strings.ToLower(params.SheetID), func(sht *sheet.Sheet) error {
		sht.Each(func(pos position.Position, cell *sheet.Cell) {
			if cell.IsEmpty() {
				return
			}
			cells[pos.String()] = renderCell(cell)
		})
		return nil
	})

	if errors.Is(err, ErrSheetNotFound) {
		writeJSON(c, http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	writeJSON(c, http.StatusOK, gin.H{"cells": cells})
}

func (ctl *Controller) SubscribeAction(c *gin.Context) {
	var params cellURIParams
	var request SubscribeRequest

	if err := c.ShouldBindUri(&params); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := position.Parse(params.CellID); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ctl.dispatcher != nil {
		ctl.dispatcher.SetWebhookURL(strings.ToLower(params.SheetID), strings.ToUpper(params.CellID), request.WebhookURL)
	}

	writeJSON(c, http.StatusNoContent, nil)
}

func renderCell(cell *sheet.Cell) CellResponse {
	return CellResponse{
		Value: cell.GetValue().String(),
		Text:  cell.GetText(),
	}
}

func writeJSON(c *gin.Context, status int, v any) {
	if v == nil {
		c.Status(status)
		return
	}

	payload, err := sonic.Marshal(v)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(status, "application/json; charset=utf-8", payload)
}

var errCellNotFound = errors.New("cell not found")
