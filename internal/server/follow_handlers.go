package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Follow handles GET/POST /profile/:username/follow/. Following yourself
// or an author you already follow changes nothing; either way the browser
// ends up back on the profile.
func (s *Server) Follow(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.followService.Follow(c.Context(), c.Locals("userID").(uint), username); err != nil {
		return respondForError(c, err)
	}

	if wantsJSON(c) {
		return c.JSON(fiber.Map{"following": username})
	}
	return c.Redirect(fmt.Sprintf("/profile/%s/", username), fiber.StatusFound)
}

// Unfollow handles GET/POST /profile/:username/unfollow/.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.followService.Unfollow(c.Context(), c.Locals("userID").(uint), username); err != nil {
		return respondForError(c, err)
	}

	if wantsJSON(c) {
		return c.JSON(fiber.Map{"unfollowed": username})
	}
	return c.Redirect(fmt.Sprintf("/profile/%s/", username), fiber.StatusFound)
}
