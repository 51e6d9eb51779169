package v1

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/middleware"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/store"
	"github.com/yomu-app/yomu/worker"
)

type Handler struct {
	store    *store.Store
	viewPool worker.WorkPool
	router   *mux.Router
}

func Server(router *mux.Router, store *store.Store, viewPool worker.WorkPool) {
	handler := &Handler{
		store:    store,
		viewPool: viewPool,
		router:   router,
	}

	sr := router.PathPrefix("/api/v1").Subrouter()
	mw := middleware.NewMiddleware(handler.store)
	sr.Use(mw.HandleCORS)
	sr.Use(mw.ClientIP)
	sr.Use(mw.Logging)

	sSetting, err := store.GetOrUpsetSystemSecuritySetting()
	if err != nil {
		log.Logger.Error("Error getting security setting", zap.Error(err))
		os.Exit(1)
	}
	jwtSecret := sSetting.JWTSecret
	sr.Use(NewAuthInterceptor(store, jwtSecret).AuthenticationInterceptor)
	sr.Methods(http.MethodOptions)

	// The JWT secret doubles as the salt for client-IP hashing.
	mangaViews := middleware.NewViewTracker(viewPool, model.ViewManga, "mangaSlug", jwtSecret)
	chapterViews := middleware.NewViewTracker(viewPool, model.ViewChapter, "chapterSlug", jwtSecret)

	sr.HandleFunc("/signup", handler.signUp).Methods(http.MethodPost)
	sr.HandleFunc("/signin", handler.signIn).Methods(http.MethodPost)
	sr.HandleFunc("/logout", handler.signOut).Methods(http.MethodPost)
	sr.HandleFunc("/me", handler.me).Methods(http.MethodGet)
	sr.HandleFunc("/user", handler.createUser).Methods(http.MethodPost)
	sr.HandleFunc("/users", handler.listUsers).Methods(http.MethodGet)
	sr.HandleFunc("/settings/general", handler.setGeneralSettings).Methods(http.MethodPost)

	// Public catalog
	sr.HandleFunc("/manga", handler.listManga).Methods(http.MethodGet)
	sr.Handle("/manga/{mangaSlug}", mangaViews.Track(http.HandlerFunc(handler.getManga))).Methods(http.MethodGet)
	sr.HandleFunc("/manga/{mangaSlug}/chapters", handler.listChapters).Methods(http.MethodGet)
	sr.Handle("/chapter/{chapterSlug}", chapterViews.Track(http.HandlerFunc(handler.getChapter))).Methods(http.MethodGet)
	sr.HandleFunc("/genres", handler.listGenres).Methods(http.MethodGet)
	sr.HandleFunc("/covers/{mangaSlug}", handler.getCover).Methods(http.MethodGet)

	// Reading history
	sr.HandleFunc("/reading/progress", handler.saveProgress).Methods(http.MethodPost)
	sr.HandleFunc("/reading/manga/{mangaSlug}/last-read", handler.getLastRead).Methods(http.MethodGet)
	sr.HandleFunc("/reading/history", handler.listHistory).Methods(http.MethodGet)
	sr.HandleFunc("/reading/history/manga/{mangaSlug}", handler.deleteHistory).Methods(http.MethodDelete)

	// Bookmarks
	sr.HandleFunc("/bookmarks/manga/{mangaSlug}", handler.addBookmark).Methods(http.MethodPost)
	sr.HandleFunc("/bookmarks/manga/{mangaSlug}", handler.removeBookmark).Methods(http.MethodDelete)
	sr.HandleFunc("/bookmarks", handler.listBookmarks).Methods(http.MethodGet)
	sr.HandleFunc("/bookmarks/check/{mangaSlug}", handler.checkBookmark).Methods(http.MethodGet)

	// Reading lists
	sr.HandleFunc("/lists", handler.upsertListEntry).Methods(http.MethodPost)
	sr.HandleFunc("/lists/manga/{mangaSlug}", handler.removeListEntry).Methods(http.MethodDelete)
	sr.HandleFunc("/lists", handler.listListEntries).Methods(http.MethodGet)
	sr.HandleFunc("/lists/status/{mangaSlug}", handler.getListStatus).Methods(http.MethodGet)
	sr.HandleFunc("/lists/stats", handler.getReadingStats).Methods(http.MethodGet)

	// Admin analytics
	sr.HandleFunc("/admin/analytics/overview", handler.analyticsOverview).Methods(http.MethodGet)
	sr.HandleFunc("/admin/analytics/manga-views", handler.analyticsMangaViews).Methods(http.MethodGet)
	sr.HandleFunc("/admin/analytics/user-growth", handler.analyticsUserGrowth).Methods(http.MethodGet)
	sr.HandleFunc("/admin/analytics/popular-genres", handler.analyticsPopularGenres).Methods(http.MethodGet)
	sr.HandleFunc("/admin/analytics/top-manga", handler.analyticsTopManga).Methods(http.MethodGet)
	sr.HandleFunc("/admin/analytics/recent-activity", handler.analyticsRecentActivity).Methods(http.MethodGet)

	// Admin view pruning
	sr.HandleFunc("/admin/analytics/manga-views", handler.pruneMangaViews).Methods(http.MethodDelete)
	sr.HandleFunc("/admin/analytics/manga-views/manga/{id}", handler.pruneMangaViewsForManga).Methods(http.MethodDelete)
	sr.HandleFunc("/admin/analytics/manga-views/all", handler.pruneAllMangaViews).Methods(http.MethodDelete)
	sr.HandleFunc("/admin/analytics/chapter-views", handler.pruneChapterViews).Methods(http.MethodDelete)
	sr.HandleFunc("/admin/analytics/chapter-views/chapter/{id}", handler.pruneChapterViewsForChapter).Methods(http.MethodDelete)
	sr.HandleFunc("/admin/analytics/chapter-views/all", handler.pruneAllChapterViews).Methods(http.MethodDelete)

	// Admin catalog
	sr.HandleFunc("/admin/manga", handler.createManga).Methods(http.MethodPost)
	sr.HandleFunc("/admin/manga/{mangaSlug}", handler.updateManga).Methods(http.MethodPut)
	sr.HandleFunc("/admin/manga/{mangaSlug}", handler.deleteManga).Methods(http.MethodDelete)
	sr.HandleFunc("/admin/manga/{mangaSlug}/cover", handler.uploadCover).Methods(http.MethodPost)
	sr.HandleFunc("/admin/manga/{mangaSlug}/chapters", handler.createChapter).Methods(http.MethodPost)
	sr.HandleFunc("/admin/chapter/{id}", handler.deleteChapter).Methods(http.MethodDelete)
	sr.HandleFunc("/admin/genres", handler.createGenre).Methods(http.MethodPost)
}
