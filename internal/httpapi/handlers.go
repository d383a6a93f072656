package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/letsssgooo/historyGames/internal/docparse"
	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/extract"
	"github.com/letsssgooo/historyGames/internal/games"
	"github.com/letsssgooo/historyGames/internal/history"
	"github.com/letsssgooo/historyGames/internal/session"
)

const sessionKey = "session"

// loadSession находит сессию по :id и кладёт её в Locals.
func (s *Server) loadSession(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	c.Locals(sessionKey, sess)
	return c.Next()
}

func current(c *fiber.Ctx) *session.Session {
	return c.Locals(sessionKey).(*session.Session)
}

func (s *Server) createSession(c *fiber.Ctx) error {
	sess := s.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(sess.Snapshot())
}

func (s *Server) getSession(c *fiber.Ctx) error {
	return c.JSON(current(c).Snapshot())
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	if err := s.sessions.Delete(current(c).ID()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) setCredentials(c *fiber.Ctx) error {
	var req extract.Credentials
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}

	sess := current(c)
	sess.SetCredentials(req.APIKey, req.Model)
	return c.JSON(sess.Snapshot())
}

func (s *Server) setConfig(c *fiber.Ctx) error {
	var cfg models.GameConfig
	if err := c.BodyParser(&cfg); err != nil {
		return errBadBody
	}

	sess := current(c)
	if err := sess.SetConfig(cfg); err != nil {
		return err
	}
	return c.JSON(sess.Snapshot())
}

// navigate оборачивает переход между экранами без тела запроса.
func (s *Server) navigate(fn func(*session.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := current(c)
		if err := fn(sess); err != nil {
			return err
		}
		return c.JSON(sess.Snapshot())
	}
}

func (s *Server) startGame(c *fiber.Ctx) error {
	var req struct {
		Type models.GameType `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}

	sess := current(c)
	if err := sess.StartGame(req.Type); err != nil {
		return err
	}
	return c.JSON(sess.Snapshot())
}

func (s *Server) act(c *fiber.Ctx) error {
	var action games.Action
	if err := c.BodyParser(&action); err != nil {
		return errBadBody
	}

	sess := current(c)
	if err := sess.Act(action); err != nil {
		return err
	}
	return c.JSON(sess.Snapshot())
}

func (s *Server) loadSaved(c *fiber.Ctx) error {
	sess := current(c)
	if err := sess.LoadSaved(c.UserContext(), c.Params("gameId")); err != nil {
		return err
	}
	return c.JSON(sess.Snapshot())
}

func (s *Server) analyzeText(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}

	sess := current(c)
	if err := sess.AnalyzeText(c.UserContext(), req.Text); err != nil {
		return analysisFailed(c, sess, err)
	}
	return c.JSON(sess.Snapshot())
}

func (s *Server) analyzeFile(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errFileRequired
	}
	data, err := readFile(fh)
	if err != nil {
		return err
	}

	sess := current(c)
	err = sess.AnalyzeFile(c.UserContext(), fh.Filename, fh.Header.Get(fiber.HeaderContentType), data)
	if err != nil {
		return analysisFailed(c, sess, err)
	}
	return c.JSON(sess.Snapshot())
}

// analysisFailed отвечает ошибкой вместе со снимком сессии,
// чтобы клиент показал сообщение с экрана.
func analysisFailed(c *fiber.Ctx, sess *session.Session, err error) error {
	snap := sess.Snapshot()
	msg := snap.Error
	if msg == "" {
		msg = err.Error()
	}

	return c.Status(statusOf(err)).JSON(fiber.Map{
		"error":   msg,
		"session": snap,
	})
}

// setPuzzleImage принимает {url} или загруженную картинку, которая становится data URL.
func (s *Server) setPuzzleImage(c *fiber.Ctx) error {
	var imageURL string

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return errFileRequired
		}
		data, err := readFile(fh)
		if err != nil {
			return err
		}

		file, err := docparse.Parse(fh.Filename, fh.Header.Get(fiber.HeaderContentType), data)
		if err != nil || file.Type != docparse.TypeImage {
			return session.ErrInvalidImage
		}
		imageURL = fmt.Sprintf("data:%s;base64,%s", file.ImageMimeType, file.ImageBase64)
	} else {
		var req struct {
			URL string `json:"url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadBody
		}
		imageURL = req.URL
	}

	sess := current(c)
	if err := sess.SetPuzzleImage(imageURL); err != nil {
		return err
	}
	return c.JSON(sess.Snapshot())
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("can not open upload, %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("can not read upload, %w", err)
	}
	return data, nil
}

func (s *Server) listHistory(c *fiber.Ctx) error {
	saved := s.history.List(c.UserContext())

	items := make([]history.Entry, 0, len(saved))
	for _, g := range saved {
		items = append(items, history.Summarize(g))
	}

	return c.JSON(items)
}

func (s *Server) getHistory(c *fiber.Ctx) error {
	g, ok := s.history.Get(c.UserContext(), c.Params("id"))
	if !ok {
		return errHistoryNotFound
	}
	return c.JSON(g)
}

func (s *Server) deleteHistory(c *fiber.Ctx) error {
	s.history.Delete(c.UserContext(), c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) clearHistory(c *fiber.Ctx) error {
	s.history.Clear(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}
