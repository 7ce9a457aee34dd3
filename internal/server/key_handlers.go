package server

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/infmoney/omegahubsite/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	scriptKeyPrefix  = "SH_"
	scriptKeyLength  = 32
	scriptKeyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateScriptKey handles POST /api/keys/generate. Keys are random and
// stateless; scripts embed them for self-identification, nothing is stored
// server-side.
func (s *Server) GenerateScriptKey(c *fiber.Ctx) error {
	key, err := generateScriptKey()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"key":          key,
		"generated_at": time.Now(),
	})
}

func generateScriptKey() (string, error) {
	buf := make([]byte, scriptKeyLength)
	max := big.NewInt(int64(len(scriptKeyCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = scriptKeyCharset[n.Int64()]
	}
	return scriptKeyPrefix + string(buf), nil
}
