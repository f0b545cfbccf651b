package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/krishimitra/agrichat/internal/chat"
	"github.com/krishimitra/agrichat/internal/providers/stt"
	"github.com/krishimitra/agrichat/internal/storage"
	"github.com/krishimitra/agrichat/internal/utils"
)

const maxAudioBytes = 10 << 20

var allowedUploadExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".mp3":  "audio/mpeg",
}

// MediaHandler covers the multi-modal variants: synchronous voice questions
// and attachment uploads.
type MediaHandler struct {
	svc      *chat.Service
	stt      stt.Provider     // nil disables /audio
	uploader storage.Uploader // nil disables /upload
	log      *logrus.Logger
}

func NewMediaHandler(svc *chat.Service, transcriber stt.Provider, uploader storage.Uploader, log *logrus.Logger) *MediaHandler {
	if log == nil {
		log = logrus.New()
	}
	return &MediaHandler{svc: svc, stt: transcriber, uploader: uploader, log: log}
}

type AudioResponse struct {
	Transcript  string `json:"transcript"`
	Reply       string `json:"reply"`
	WasAccepted bool   `json:"was_accepted"`
}

// Audio transcribes an uploaded recording and runs the gated pipeline on the
// transcript. A failed or empty transcription records nothing.
func (h *MediaHandler) Audio(c *gin.Context) {
	const op = "MediaHandler.Audio"

	if h.stt == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "speech-to-text is not configured", nil))
		return
	}

	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio file is required", err))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil || len(audio) == 0 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "empty audio", err))
		return
	}

	language := utils.NormalizeLanguage(c.PostForm("language"))

	text, conf, err := h.stt.Transcribe(c.Request.Context(), audio, language)
	if err != nil {
		h.log.WithError(err).Warn("transcription failed")
		writeError(c, utils.E(utils.CodeUnavailable, op, "transcription failed", err))
		return
	}
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusUnprocessableEntity, APIError{
			Code:    utils.CodeInvalidArgument,
			Message: "could not understand the audio",
		})
		return
	}

	h.log.WithFields(logrus.Fields{"confidence": conf, "language": language}).
		Debug("audio transcribed")

	res, err := h.svc.SubmitTranscript(c.Request.Context(), text, c.PostForm("language"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AudioResponse{
		Transcript:  text,
		Reply:       res.DisplayText,
		WasAccepted: res.WasAccepted,
	})
}

// Upload stores an attachment in the bucket and returns its public URL. It
// does not touch the conversation log, so the (user, assistant) pairing of
// records stays intact.
func (h *MediaHandler) Upload(c *gin.Context) {
	const op = "MediaHandler.Upload"

	if h.uploader == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "uploads are not configured", nil))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file is required", err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedUploadExts[ext]
	if !ok {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "unsupported file type", nil))
		return
	}

	objectName := time.Now().UTC().Format("2006/01/02") + "/" + uuid.NewString() + ext
	url, err := h.uploader.Upload(c.Request.Context(), objectName, contentType, file)
	if err != nil {
		h.log.WithError(err).Error("upload failed")
		writeError(c, utils.E(utils.CodeInternal, op, "failed to store file", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
