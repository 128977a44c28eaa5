package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/testutil"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/llm"
)

const testSecret = "test-secret-test-secret-test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *apiClient) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func newTestServer(t *testing.T) (*apiClient, *llm.MockProvider, *model.Lesson) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	cfg := &config.Config{
		Server:       config.ServerConfig{Mode: gin.TestMode},
		JWT:          config.JWTConfig{Secret: testSecret},
		Storage:      config.StorageConfig{Type: util.StorageLocal},
		Gamification: config.DefaultGamification(),
	}
	provider := llm.NewMockProvider()
	application := build(cfg, db, nil, provider)

	lesson := testutil.SeedLesson(t, db, "Greetings",
		testutil.MultipleChoice("Hello", "Hola", "Adiós", "Gracias"),
		testutil.Translate("Cat", "Gato"),
	)

	token, err := util.GenerateJWT(7, "mia", testSecret, time.Hour)
	require.NoError(t, err)
	return &apiClient{t: t, router: application.Router, token: token}, provider, lesson
}

func TestRouter_HealthIsPublic(t *testing.T) {
	client, _, _ := newTestServer(t)
	client.token = ""

	code, body := client.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"database":"up"`)
	assert.Contains(t, string(body.Data), `"redis":"disabled"`)
}

func TestRouter_RequiresToken(t *testing.T) {
	client, _, lesson := newTestServer(t)
	path := fmt.Sprintf("/api/lessons/%d/start", lesson.ID)

	client.token = ""
	code, _ := client.do(http.MethodPost, path, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	client.token = "not-a-jwt"
	code, _ = client.do(http.MethodPost, path, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	forged, err := util.GenerateJWT(7, "mia", "some-other-secret", time.Hour)
	require.NoError(t, err)
	client.token = forged
	code, _ = client.do(http.MethodPost, path, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_LessonRoundTrip(t *testing.T) {
	client, provider, lesson := newTestServer(t)
	base := fmt.Sprintf("/api/lessons/%d", lesson.ID)

	code, body := client.do(http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusOK, code, body.Message)
	var start struct {
		ExerciseCount int  `json:"exerciseCount"`
		Practice      bool `json:"practice"`
		Hearts        int  `json:"hearts"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &start))
	assert.Equal(t, 2, start.ExerciseCount)
	assert.False(t, start.Practice)
	assert.Equal(t, 5, start.Hearts)

	code, body = client.do(http.MethodGet, base+"/exercises/1", nil)
	require.Equal(t, http.StatusOK, code)
	// 答案不随练习下发
	assert.NotContains(t, string(body.Data), "isCorrect")
	assert.NotContains(t, string(body.Data), "answerText")

	mc := lesson.Exercises[0]
	correctID := mc.Choices[0].ID
	code, body = client.do(http.MethodPost, base+"/exercises/1/submit", map[string]interface{}{"choiceId": correctID})
	require.Equal(t, http.StatusOK, code)
	var first struct {
		IsCorrect bool                 `json:"isCorrect"`
		Status    model.ExerciseStatus `json:"status"`
		NextIndex int                  `json:"nextIndex"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &first))
	assert.True(t, first.IsCorrect)
	assert.Equal(t, model.StatusPerfect, first.Status)
	assert.Equal(t, 2, first.NextIndex)

	// 重复提交不再计分
	code, body = client.do(http.MethodPost, base+"/exercises/1/submit", map[string]interface{}{"choiceId": correctID})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"stale":true`)

	code, _ = client.do(http.MethodGet, base+"/exercises/2", nil)
	require.Equal(t, http.StatusOK, code)
	provider.AddText(`{"correct": true, "feedback": "Nice."}`)
	code, body = client.do(http.MethodPost, base+"/exercises/2/submit", map[string]interface{}{"text": "gato"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"isCorrect":true`)
	assert.Contains(t, string(body.Data), `"finished":true`)

	code, body = client.do(http.MethodPost, base+"/complete", nil)
	require.Equal(t, http.StatusOK, code, body.Message)
	var summary struct {
		Score     int  `json:"score"`
		Total     int  `json:"total"`
		Practice  bool `json:"practice"`
		XPAwarded int  `json:"xpAwarded"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &summary))
	assert.Equal(t, 2, summary.Score)
	assert.Equal(t, 2, summary.Total)
	assert.False(t, summary.Practice)
	assert.Positive(t, summary.XPAwarded)

	code, body = client.do(http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, code)
	var profile model.Profile
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	assert.Equal(t, "mia", profile.DisplayName)
	assert.GreaterOrEqual(t, profile.XP, 10+10+10)
	assert.Equal(t, 1, profile.StreakDays)

	code, body = client.do(http.MethodGet, base+"/review", nil)
	require.Equal(t, http.StatusOK, code)
	var review []struct {
		Attempted bool `json:"attempted"`
		IsCorrect bool `json:"isCorrect"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &review))
	require.Len(t, review, 2)
	for _, item := range review {
		assert.True(t, item.Attempted)
		assert.True(t, item.IsCorrect)
	}

	// 再次开始为练习模式
	code, body = client.do(http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"practice":true`)
}

func TestRouter_ErrorMapping(t *testing.T) {
	client, _, lesson := newTestServer(t)

	code, _ := client.do(http.MethodPost, "/api/lessons/9999/start", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = client.do(http.MethodPost, "/api/lessons/abc/start", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = client.do(http.MethodGet, fmt.Sprintf("/api/lessons/%d/exercises/x", lesson.ID), nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = client.do(http.MethodPost, fmt.Sprintf("/api/lessons/%d/exercises/9/submit", lesson.ID), map[string]string{"text": "hola"})
	assert.Equal(t, http.StatusNotFound, code)

	// 没有作答就结算被拒绝
	code, _ = client.do(http.MethodPost, fmt.Sprintf("/api/lessons/%d/start", lesson.ID), nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = client.do(http.MethodPost, fmt.Sprintf("/api/lessons/%d/complete", lesson.ID), nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = client.do(http.MethodPut, "/api/profile/language", map[string]string{"language": "klingon"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := client.do(http.MethodPut, "/api/profile/language", map[string]string{"language": "french"})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"learningLanguage":"french"`)

	code, _ = client.do(http.MethodPost, "/api/shop/purchase", map[string]string{"item": "rocket"})
	assert.Equal(t, http.StatusBadRequest, code)

	// 红心已满，购买被拒绝但仍是 200
	code, body = client.do(http.MethodPost, "/api/shop/purchase", map[string]string{"item": util.ShopItemHeart})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"declined":true`)
}

func TestRouter_OutOfHeartsForbidden(t *testing.T) {
	client, _, lesson := newTestServer(t)
	base := fmt.Sprintf("/api/lessons/%d", lesson.ID)
	code, _ := client.do(http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusOK, code)

	// 每轮答错两次扣两颗心，三轮后归零
	wrongID := lesson.Exercises[0].Choices[1].ID
	for i := 0; i < 3; i++ {
		client.do(http.MethodGet, base+"/exercises/1", nil)
		client.do(http.MethodPost, base+"/exercises/1/submit", map[string]interface{}{"choiceId": wrongID})
		client.do(http.MethodPost, base+"/exercises/1/submit", map[string]interface{}{"choiceId": wrongID})
	}

	code, _ = client.do(http.MethodPost, base+"/start", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = client.do(http.MethodGet, base+"/exercises/1", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = client.do(http.MethodPost, base+"/exercises/2/submit", map[string]string{"text": "Gato"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_BoardsAndLeaderboard(t *testing.T) {
	client, _, _ := newTestServer(t)

	code, body := client.do(http.MethodGet, "/api/quests", nil)
	require.Equal(t, http.StatusOK, code)
	var quests []json.RawMessage
	require.NoError(t, json.Unmarshal(body.Data, &quests))
	assert.Len(t, quests, 5)

	code, body = client.do(http.MethodGet, "/api/achievements", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"totalCount":23`)

	code, _ = client.do(http.MethodGet, "/api/achievements/leaderboard?limit=5", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_HintsAndConversation(t *testing.T) {
	client, provider, lesson := newTestServer(t)

	provider.AddText("Think of a greeting.\n---\nIt purrs.")
	code, body := client.do(http.MethodGet, fmt.Sprintf("/api/lessons/%d/hints", lesson.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var hints []struct {
		Index int    `json:"index"`
		Hint  string `json:"hint"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &hints))
	require.Len(t, hints, 2)
	assert.Equal(t, "Think of a greeting.", hints[0].Hint)
	assert.Equal(t, 2, hints[1].Index)
	assert.Equal(t, "It purrs.", hints[1].Hint)

	code, _ = client.do(http.MethodPost, "/api/practice/conversation", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = client.do(http.MethodPost, "/api/practice/conversation", map[string]interface{}{
		"message": "hola",
		"history": []map[string]string{{"role": "system", "content": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	provider.AddText("¡Hola, Mia!")
	code, body = client.do(http.MethodPost, "/api/practice/conversation", map[string]interface{}{
		"message": "hola",
		"history": []map[string]string{{"role": "assistant", "content": "¿Qué tal?"}},
	})
	require.Equal(t, http.StatusOK, code, body.Message)
	assert.Contains(t, string(body.Data), `"reply":"¡Hola, Mia!"`)
	assert.Contains(t, string(body.Data), `"language":"spanish"`)
}
