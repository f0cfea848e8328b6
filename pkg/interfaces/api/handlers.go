package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
	"github.com/vsinha/spares/pkg/infrastructure/excel"
	"github.com/vsinha/spares/pkg/infrastructure/reports"
)

// Response wraps every successful body
type Response struct {
	Data any `json:"data"`
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Data: data})
}

// create binds the JSON body and passes it to fn
func create[In, Out any](fn func(context.Context, In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		out, err := fn(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		ok(c, http.StatusCreated, out)
	}
}

// byID passes the :id path parameter to fn. Used for reads and for actions
// without a body.
func byID[Out any](fn func(context.Context, string) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := fn(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		ok(c, http.StatusOK, out)
	}
}

// action passes the :id path parameter and the JSON body to fn. An empty
// body binds as the zero input.
func action[In, Out any](fn func(context.Context, string, In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in In
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&in); err != nil {
				badRequest(c, err)
				return
			}
		}
		out, err := fn(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		ok(c, http.StatusOK, out)
	}
}

// list reads ?status= and ?ref= into a document filter
func list[Out any](fn func(context.Context, repositories.DocumentFilter) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := fn(c.Request.Context(), repositories.DocumentFilter{
			Status: c.Query("status"),
			RefID:  c.Query("ref"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		ok(c, http.StatusOK, out)
	}
}

// all runs a parameterless query
func all[Out any](fn func(context.Context) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := fn(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		ok(c, http.StatusOK, out)
	}
}

func (s *Server) listSpareParts(c *gin.Context) {
	filter := repositories.PartFilter{
		ActiveOnly: c.Query("active") == "true",
		Search:     c.Query("q"),
	}
	out, err := s.svc.ListSpareParts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) listSuppliers(c *gin.Context) {
	out, err := s.svc.ListSuppliers(c.Request.Context(), entities.SupplierType(c.Query("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) installPart(c *gin.Context) {
	var in dto.InstallPartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	in.MachineID = c.Param("id")
	if in.InstalledBy == "" {
		in.InstalledBy = currentUsername(c)
	}
	out, err := s.svc.InstallPart(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

func (s *Server) machineParts(c *gin.Context) {
	out, err := s.svc.MachineParts(c.Request.Context(), c.Param("id"), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) removePart(c *gin.Context) {
	out, err := s.svc.RemovePart(c.Request.Context(), c.Param("id"), currentUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) stockLevels(c *gin.Context) {
	filter := repositories.StockFilter{
		SparePartID: c.Query("spare_part_id"),
		LocationID:  c.Query("location_id"),
	}
	if filter.SparePartID != "" && filter.LocationID != "" {
		level, err := s.svc.StockLevel(c.Request.Context(), filter.SparePartID, filter.LocationID)
		if err != nil {
			respondError(c, err)
			return
		}
		ok(c, http.StatusOK, []*entities.StockLevel{level})
		return
	}
	out, err := s.svc.StockLevels(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) movements(c *gin.Context) {
	filter := repositories.MovementFilter{
		SparePartID: c.Query("spare_part_id"),
		LocationID:  c.Query("location_id"),
		DocumentID:  c.Query("document_id"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, fmt.Errorf("invalid limit: %s", v))
			return
		}
		filter.Limit = n
	}
	out, err := s.svc.Movements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// importStock accepts an xlsx upload in the "file" form field
func (s *Server) importStock(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, fmt.Errorf("file upload error: %w", err))
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, fmt.Errorf("unable to open file: %w", err))
		return
	}
	defer file.Close()

	lines, err := excel.ReadOpeningStock(file, c.PostForm("sheet"))
	if err != nil {
		badRequest(c, err)
		return
	}
	n, err := s.svc.ImportStock(c.Request.Context(), lines)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"file": header.Filename, "rows": n})
}

func reportFilter(c *gin.Context) reports.Filter {
	var f reports.Filter
	if v := c.Query("location_id"); v != "" {
		f.LocationIDs = strings.Split(v, ",")
	}
	return f
}

func (s *Server) lowStock(c *gin.Context) {
	out, err := s.svc.LowStock(c.Request.Context(), reportFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) valuation(c *gin.Context) {
	rows, err := s.svc.Valuation(c.Request.Context(), reportFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"locations": rows, "total": reports.TotalValue(rows)})
}

func (s *Server) raiseReplenishment(c *gin.Context) {
	out, err := s.svc.RaiseReplenishment(c.Request.Context(), currentUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

func (s *Server) computeGST(c *gin.Context) {
	var in dto.GSTInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := s.svc.ComputeGST(in)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// approveIndent records the caller as the approver
func (s *Server) approveIndent(c *gin.Context) {
	var in dto.ApproveIndentInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
	}
	in.ApprovedBy = currentUsername(c)
	out, err := s.svc.ApproveIndent(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) rejectIndent(c *gin.Context) {
	var in dto.RejectIndentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	in.RejectedBy = currentUsername(c)
	out, err := s.svc.RejectIndent(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}
