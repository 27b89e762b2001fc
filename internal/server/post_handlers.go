package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm is the post create/edit form: text, optional group, optional
// image file. The image arrives through multipart and is read separately.
type postForm struct {
	Text  string `json:"text" form:"text"`
	Group string `json:"group" form:"group"`
}

func (f postForm) groupID(c *fiber.Ctx) (*uint, error) {
	if f.Group == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(f.Group, 10, 32)
	if err != nil || id == 0 {
		return nil, models.NewValidationError("Invalid group")
	}
	gid := uint(id)
	return &gid, nil
}

// PostDetail handles GET /posts/:id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondForError(c, err)
	}

	comments, err := s.commentService.ListComments(c.Context(), id)
	if err != nil {
		return respondForError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":     post,
		"comments": comments,
	})
}

// CreatePost handles POST /create/. Accepts multipart (text, group, image)
// or JSON. Browsers are redirected to the author's profile on success.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	groupID, err := form.groupID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	imagePath, err := s.storeUploadedImage(c)
	if err != nil {
		return respondForError(c, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: userID,
		Text:     form.Text,
		GroupID:  groupID,
		Image:    imagePath,
	})
	if err != nil {
		return respondForError(c, err)
	}

	if wantsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(post)
	}

	author, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondForError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/profile/%s/", author.Username), fiber.StatusFound)
}

// EditPostPage handles GET /posts/:id/edit/. Only the author gets the form
// data back; anyone else is bounced to the post detail page.
func (s *Server) EditPostPage(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondForError(c, err)
	}

	if post.AuthorID != c.Locals("userID").(uint) {
		return c.Redirect(fmt.Sprintf("/posts/%d/", id), fiber.StatusFound)
	}

	return c.JSON(fiber.Map{
		"post":    post,
		"is_edit": true,
	})
}

// EditPost handles POST /posts/:id/edit/. A non-author is redirected to
// the detail page without touching the post.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	groupID, err := form.groupID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	imagePath, err := s.storeUploadedImage(c)
	if err != nil {
		return respondForError(c, err)
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  userID,
		PostID:  id,
		Text:    form.Text,
		GroupID: groupID,
		Image:   imagePath,
	})
	if err != nil {
		var appErr *models.AppError
		// The web form flow sends non-authors back to the post, it does
		// not error at them.
		if errors.As(err, &appErr) && appErr.Code == "UNAUTHORIZED" && !wantsJSON(c) {
			return c.Redirect(fmt.Sprintf("/posts/%d/", id), fiber.StatusFound)
		}
		return respondForError(c, err)
	}

	if wantsJSON(c) {
		return c.JSON(post)
	}
	return c.Redirect(fmt.Sprintf("/posts/%d/", id), fiber.StatusFound)
}

// DeletePost handles DELETE /api/posts/:id and /api/admin/posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	err = s.postService.DeletePost(c.Context(), service.DeletePostInput{
		UserID: c.Locals("userID").(uint),
		PostID: id,
	})
	if err != nil {
		return respondForError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ServeMedia handles GET /media/* for stored post images.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	full, err := s.mediaService.Open(c.Params("*"))
	if err != nil {
		return respondForError(c, err)
	}
	return c.SendFile(full)
}

// storeUploadedImage reads the optional image field from the multipart
// form and hands it to the media service. No file means no image, not an
// error.
func (s *Server) storeUploadedImage(c *fiber.Ctx) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	content, err := readMultipartFile(fileHeader)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return s.mediaService.SaveImage(c.Context(), service.SaveImageInput{
		Filename: fileHeader.Filename,
		Content:  content,
	})
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
