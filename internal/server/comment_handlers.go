package server

import (
	"fmt"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment/. Browsers land back on the
// post detail page; API clients get the comment back.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var form struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.Context(), service.AddCommentInput{
		AuthorID: c.Locals("userID").(uint),
		PostID:   id,
		Text:     form.Text,
	})
	if err != nil {
		return respondForError(c, err)
	}

	if wantsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(comment)
	}
	return c.Redirect(fmt.Sprintf("/posts/%d/", id), fiber.StatusFound)
}
