package internal

import (
	"medhistory/internal/controllers"
	"medhistory/internal/providers"
	"net/http"
)

func InitRoutes(historyController *controllers.HistoryController, uploadsController *controllers.UploadsController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/api/history/{user_id}", http.HandlerFunc(historyController.GetHistory))
	routers.Post("/api/history/{user_id}", http.HandlerFunc(historyController.AppendRecord))
	routers.Delete("/api/history/{user_id}/{record_id}", http.HandlerFunc(historyController.DeleteRecord))
	routers.Get("/api/history/{user_id}/archive", http.HandlerFunc(historyController.GetArchive))
	routers.Get("/api/users", http.HandlerFunc(historyController.GetUsers))
	routers.Get("/api/cleanup/{user_id}", http.HandlerFunc(historyController.Cleanup))
	routers.Post("/api/uploads/{user_id}", http.HandlerFunc(uploadsController.UploadImage))
	routers.Get("/uploads/{user_id}/{filename}", http.HandlerFunc(uploadsController.ServeImage))
	return routers
}
