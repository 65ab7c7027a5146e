package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zekoder/zegraphql/types"
)

type deleteMultipleRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type itemErrorResponse struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (s *Server) list(c *gin.Context) {
	var q types.QuerySchema
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&q); err != nil {
			badRequest(c, "list", err)
			return
		}
	}

	page, err := s.service.List(c.Request.Context(), c.Param("entity"), q)
	if err != nil {
		s.fail(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) get(c *gin.Context) {
	rec, err := s.service.Get(c.Request.Context(), c.Param("entity"), c.Param("id"))
	if err != nil {
		s.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) create(c *gin.Context) {
	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "create", err)
		return
	}

	rec, err := s.service.Create(c.Request.Context(), c.Param("entity"), input, s.meta(c))
	if err != nil {
		s.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) update(c *gin.Context) {
	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "update", err)
		return
	}

	rec, err := s.service.Update(c.Request.Context(), c.Param("entity"), c.Param("id"), input, s.meta(c))
	if err != nil {
		s.fail(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) delete(c *gin.Context) {
	deleted, err := s.service.Delete(c.Request.Context(), c.Param("entity"), c.Param("id"), s.meta(c))
	if err != nil {
		s.fail(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (s *Server) upsert(c *gin.Context) {
	var inputs []map[string]interface{}
	if err := c.ShouldBindJSON(&inputs); err != nil {
		badRequest(c, "upsert", err)
		return
	}

	result, err := s.service.UpsertMultiple(c.Request.Context(), c.Param("entity"), inputs, s.meta(c))
	if err != nil {
		s.fail(c, "upsert", err)
		return
	}

	errs := make([]itemErrorResponse, 0, len(result.Failed))
	for _, f := range result.Failed {
		_, gerr := mapError(f.Err, "upsert")
		errs = append(errs, itemErrorResponse{
			Index:   f.Index,
			Message: gerr.Message,
			Code:    gerr.Extensions["code"].(string),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": result.Succeeded, "errors": errs})
}

func (s *Server) deleteMultiple(c *gin.Context) {
	var req deleteMultipleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "delete_multiple", err)
		return
	}

	n, err := s.service.DeleteMultiple(c.Request.Context(), c.Param("entity"), req.IDs, s.meta(c))
	if err != nil {
		s.fail(c, "delete_multiple", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
