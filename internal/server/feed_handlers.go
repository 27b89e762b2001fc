package server

import (
	"github.com/gofiber/fiber/v2"
)

// Index handles GET /?page=N, the sitewide feed.
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.feedService.Index(c.Context(), parsePage(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(page)
}

// GroupFeed handles GET /group/:slug/?page=N.
func (s *Server) GroupFeed(c *fiber.Ctx) error {
	group, page, err := s.feedService.GroupFeed(c.Context(), c.Params("slug"), parsePage(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(fiber.Map{
		"group": group,
		"posts": page.Posts,
		"page":  page,
	})
}

// Profile handles GET /profile/:username/?page=N. With a logged-in viewer
// the response also says whether they follow this author.
func (s *Server) Profile(c *fiber.Ctx) error {
	profile, err := s.feedService.ProfileFeed(c.Context(), c.Params("username"), currentUserID(c), parsePage(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(profile)
}

// FollowFeed handles GET /follow/?page=N, posts by followed authors only.
func (s *Server) FollowFeed(c *fiber.Ctx) error {
	page, err := s.feedService.FollowFeed(c.Context(), currentUserID(c), parsePage(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(page)
}
