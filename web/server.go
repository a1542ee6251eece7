package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/ChrisFloofyKitsune/s3o-browser/status"
)

// ServerModelsDir is the directory the handlers read .s3o files from.
var ServerModelsDir string

func StartServer(addr string, modelsDir string, webPath string) error {
	ServerModelsDir = modelsDir

	r := mux.NewRouter()
	r.HandleFunc("/action/models/{file}/{action}", HandlerActionModelFile)
	r.HandleFunc("/json/models/{file}", HandlerAjaxModelFile)
	r.HandleFunc("/json/models", HandlerAjaxModels)
	r.HandleFunc("/dump/models/{file}", HandlerDumpModelFile)
	r.HandleFunc("/upload/models/{file}", HandlerUploadModelFile)
	r.HandleFunc("/ws/status", status.Handler)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
