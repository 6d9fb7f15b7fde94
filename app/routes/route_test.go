package routes

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Rakhulsr/go-blog/app/configs"
	"github.com/Rakhulsr/go-blog/app/db/testdb"
	"github.com/Rakhulsr/go-blog/app/middlewares"
	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/Rakhulsr/go-blog/app/utils/logger"
	"gorm.io/gorm"
)

type testApp struct {
	srv *httptest.Server
	db  *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testdb.Open(t)
	env := configs.ENV{
		AppEnv:      "test",
		TemplateDir: "../../templates",
		StaticDir:   t.TempDir(),
	}
	log := logger.Discard()
	handler := NewRouter(db, Options{
		Env:         env,
		Keys:        *configs.RandomSessionKeys(),
		Log:         log,
		RateLimiter: middlewares.NewRateLimiter(600, 100, log),
		DisableCSRF: true,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, db: db}
}

// client keeps cookies and never follows redirects, so tests see each hop.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(a.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(a.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) signUp(t *testing.T, c *http.Client, username string) *models.User {
	t.Helper()
	resp, _ := a.post(t, c, "/register", url.Values{
		"username":         {username},
		"fullname":         {username + " tester"},
		"email":            {username + "@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	})
	if resp.StatusCode != http.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/login") {
		t.Fatalf("register %s: status %d location %q", username, resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, _ = a.post(t, c, "/login", url.Values{
		"email":    {username + "@example.com"},
		"password": {"secret1"},
	})
	if resp.StatusCode != http.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/?status=success") {
		t.Fatalf("login %s: status %d location %q", username, resp.StatusCode, resp.Header.Get("Location"))
	}

	var user models.User
	if err := a.db.First(&user, "username = ?", username).Error; err != nil {
		t.Fatal(err)
	}
	return &user
}

func (a *testApp) createPost(t *testing.T, c *http.Client, title string, categoryIDs ...string) *models.Post {
	t.Helper()
	resp, _ := a.post(t, c, "/create", url.Values{
		"title":      {title},
		"content":    {"this body is long enough"},
		"categories": categoryIDs,
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("create post: status %d", resp.StatusCode)
	}
	var post models.Post
	if err := a.db.First(&post, "title = ?", title).Error; err != nil {
		t.Fatal(err)
	}
	if want := "/post/" + post.ID; !strings.HasPrefix(resp.Header.Get("Location"), want) {
		t.Fatalf("location = %q, want %s", resp.Header.Get("Location"), want)
	}
	return &post
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	for _, path := range []string{"/", "/profile", "/create", "/blogs"} {
		resp, _ := app.get(t, c, path)
		if resp.StatusCode != http.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/login") {
			t.Errorf("%s: status %d location %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}

	resp, body := app.get(t, c, "/login")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `name="password"`) {
		t.Fatalf("login page: status %d", resp.StatusCode)
	}
}

func TestRegisterDuplicateEmailRedirects(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, app.client(t), "alice")

	resp, _ := app.post(t, app.client(t), "/register", url.Values{
		"username":         {"other"},
		"fullname":         {"other person"},
		"email":            {"alice@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	})
	if resp.StatusCode != http.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/register?status=error") {
		t.Fatalf("status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	var n int64
	app.db.Model(&models.User{}).Count(&n)
	if n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
}

func TestRegisterValidationRerendersForm(t *testing.T) {
	app := newTestApp(t)
	resp, body := app.post(t, app.client(t), "/register", url.Values{
		"username":         {"al"},
		"fullname":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret2"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "field-error") || !strings.Contains(body, `value="alice@example.com"`) {
		t.Fatal("form not re-rendered with errors and values")
	}
}

func TestLoginUnknownEmailAndWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, app.client(t), "alice")
	c := app.client(t)

	resp, _ := app.post(t, c, "/login", url.Values{"email": {"nobody@example.com"}, "password": {"x"}})
	if !strings.HasPrefix(resp.Header.Get("Location"), "/register") {
		t.Fatalf("unknown email location = %q", resp.Header.Get("Location"))
	}

	resp, _ = app.post(t, c, "/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", resp.StatusCode)
	}
}

func TestPostLifecycleWithComments(t *testing.T) {
	app := newTestApp(t)
	tech := testdb.Category(t, app.db, "tech")
	life := testdb.Category(t, app.db, "life")

	alice := app.client(t)
	app.signUp(t, alice, "alice")
	bob := app.client(t)
	app.signUp(t, bob, "bob")

	post := app.createPost(t, alice, "hello world", tech.ID, life.ID)

	resp, body := app.get(t, bob, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "hello world") {
		t.Fatalf("bob's feed missing the post: %d", resp.StatusCode)
	}
	_, body = app.get(t, alice, "/")
	if strings.Contains(body, "hello world") {
		t.Fatal("alice's own post shows in her feed")
	}
	_, body = app.get(t, alice, "/profile")
	if !strings.Contains(body, "hello world") {
		t.Fatal("profile misses own post")
	}
	_, body = app.get(t, bob, "/category/tech")
	if !strings.Contains(body, "hello world") {
		t.Fatal("category page misses the post")
	}

	resp, _ = app.post(t, bob, "/post/"+post.ID, url.Values{"text": {"first!"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("comment status = %d", resp.StatusCode)
	}
	var c1 models.Comment
	if err := app.db.First(&c1, "text = ?", "first!").Error; err != nil {
		t.Fatal(err)
	}
	resp, _ = app.post(t, alice, "/reply/"+c1.ID, url.Values{"text": {"thanks"}})
	if !strings.HasPrefix(resp.Header.Get("Location"), "/post/"+post.ID) {
		t.Fatalf("reply location = %q", resp.Header.Get("Location"))
	}

	resp, body = app.get(t, bob, "/post/"+post.ID)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "first!") || !strings.Contains(body, "thanks") {
		t.Fatalf("thread not rendered: %d", resp.StatusCode)
	}

	resp, _ = app.post(t, bob, "/delete/"+post.ID, nil)
	if !strings.Contains(resp.Header.Get("Location"), "status=warning") {
		t.Fatalf("bob delete location = %q", resp.Header.Get("Location"))
	}
	resp, _ = app.post(t, bob, "/edit/"+post.ID, url.Values{"title": {"stolen"}, "content": {"this body is long enough"}})
	if !strings.Contains(resp.Header.Get("Location"), "status=warning") {
		t.Fatalf("bob edit location = %q", resp.Header.Get("Location"))
	}
	var stored models.Post
	app.db.First(&stored, "id = ?", post.ID)
	if stored.Title != "hello world" {
		t.Fatalf("title = %q after denied edit", stored.Title)
	}

	resp, _ = app.post(t, alice, "/delete/"+post.ID, nil)
	if !strings.HasPrefix(resp.Header.Get("Location"), "/profile?status=success") {
		t.Fatalf("alice delete location = %q", resp.Header.Get("Location"))
	}
	var comments int64
	app.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	if comments != 0 {
		t.Fatalf("%d comments survived post delete", comments)
	}

	resp, _ = app.get(t, bob, "/post/"+post.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted post status = %d", resp.StatusCode)
	}
}

func TestEditReplacesCategories(t *testing.T) {
	app := newTestApp(t)
	tech := testdb.Category(t, app.db, "tech")
	life := testdb.Category(t, app.db, "life")
	alice := app.client(t)
	app.signUp(t, alice, "alice")
	post := app.createPost(t, alice, "tagged", tech.ID)

	resp, body := app.get(t, alice, "/edit/"+post.ID)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `value="tagged"`) {
		t.Fatalf("edit form: %d", resp.StatusCode)
	}

	resp, _ = app.post(t, alice, "/edit/"+post.ID, url.Values{
		"title":      {"retagged"},
		"content":    {"this body is long enough"},
		"categories": {life.ID, "unknown"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("edit status = %d", resp.StatusCode)
	}

	var links []models.PostCategory
	app.db.Where("post_id = ?", post.ID).Find(&links)
	if len(links) != 1 || links[0].CategoryID != life.ID {
		t.Fatalf("links = %+v", links)
	}
}

func TestDeleteCommentSubtree(t *testing.T) {
	app := newTestApp(t)
	alice := app.client(t)
	app.signUp(t, alice, "alice")
	bob := app.client(t)
	app.signUp(t, bob, "bob")
	carol := app.client(t)
	app.signUp(t, carol, "carol")
	post := app.createPost(t, alice, "thread")

	app.post(t, bob, "/post/"+post.ID, url.Values{"text": {"c1"}})
	var c1 models.Comment
	app.db.First(&c1, "text = ?", "c1")
	app.post(t, alice, "/reply/"+c1.ID, url.Values{"text": {"c2"}})
	var c2 models.Comment
	app.db.First(&c2, "text = ?", "c2")
	app.post(t, bob, "/reply/"+c2.ID, url.Values{"text": {"c3"}})

	resp, _ := app.post(t, carol, "/comment/"+c1.ID+"/delete", nil)
	if !strings.Contains(resp.Header.Get("Location"), "status=warning") {
		t.Fatalf("carol delete location = %q", resp.Header.Get("Location"))
	}

	resp, _ = app.post(t, bob, "/comment/"+c1.ID+"/delete", nil)
	if !strings.HasPrefix(resp.Header.Get("Location"), "/post/"+post.ID+"?status=success") {
		t.Fatalf("bob delete location = %q", resp.Header.Get("Location"))
	}
	var n int64
	app.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&n)
	if n != 0 {
		t.Fatalf("%d comments left", n)
	}
}

func TestUploadAvatar(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	user := app.signUp(t, c, "alice")

	upload := func(name string, content []byte) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("avatar", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(content)
		mw.Close()
		resp, err := c.Post(app.srv.URL+"/upload-avatar", mw.FormDataContentType(), &buf)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp
	}

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	resp := upload("me.png", png)
	if !strings.HasPrefix(resp.Header.Get("Location"), "/profile?status=success") {
		t.Fatalf("location = %q", resp.Header.Get("Location"))
	}
	var stored models.User
	app.db.First(&stored, "id = ?", user.ID)
	want := "/static/uploads/" + user.ID + "-me.png"
	if stored.AvatarURL != want {
		t.Fatalf("avatar = %q, want %q", stored.AvatarURL, want)
	}
	resp, _ = app.get(t, c, want)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("serving avatar: %d", resp.StatusCode)
	}

	resp = upload("notes.txt", []byte("plain text"))
	if !strings.HasPrefix(resp.Header.Get("Location"), "/profile?status=error") {
		t.Fatalf("non-image location = %q", resp.Header.Get("Location"))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp, body := app.get(t, c, "/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("healthz: %d %s", resp.StatusCode, body)
	}
	app.get(t, c, "/login")

	resp, body = app.get(t, c, "/metrics")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `blog_http_requests_total{method="GET",route="/login",status="200"}`) {
		t.Fatalf("metrics: %d\n%s", resp.StatusCode, body)
	}
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	app := newTestApp(t)
	resp, body := app.get(t, app.client(t), "/no/such/page")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "404") {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestCSRFRejectsTokenlessPost(t *testing.T) {
	db := testdb.Open(t)
	log := logger.Discard()
	handler := NewRouter(db, Options{
		Env:  configs.ENV{AppEnv: "test", TemplateDir: "../../templates", StaticDir: t.TempDir()},
		Keys: *configs.RandomSessionKeys(),
		Log:  log,
	})

	form := url.Values{"email": {"a@example.com"}, "password": {"x"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="gorilla.csrf.Token"`) {
		t.Fatalf("login form missing csrf field: %d", rec.Code)
	}
}
