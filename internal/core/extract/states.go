package extract

import (
	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/pkg/common"
)

// State 擷取流程中的一個步驟
type State string

const (
	StateValidate              State = "validate"
	StateVideoMetadata         State = "video_metadata"
	StateVideoDownload         State = "video_download"
	StateVideoInference        State = "video_inference"
	StateMetadataInference     State = "metadata_inference"
	StateWebpageFetch          State = "webpage_fetch"
	StateWebpageSchema         State = "webpage_schema"
	StateWebpageTextInference  State = "webpage_text_inference"
	StateDirectVideoInference  State = "direct_video_inference"
	StateImageInference        State = "image_inference"
	StateCaptionFetch          State = "caption_fetch"
	StateCaptionImageInference State = "caption_image_inference"

	// StateDone 成功結束
	StateDone State = "done"
	// StateFailed 失敗結束，錯誤由 edge.terminal 決定
	StateFailed State = "failed"
)

// edge 一個狀態的成功與失敗去向
type edge struct {
	onSuccess State
	onFailure State
	terminal  *common.CustomError // onFailure 為 StateFailed 時的結果
}

// flow 某一類輸入的起始狀態與轉移表
type flow struct {
	start State
	edges map[State]edge
}

func succeedOrFail(next State, terminal *common.CustomError) edge {
	return edge{onSuccess: next, onFailure: StateFailed, terminal: terminal}
}

// webpageEdges 網頁抓取、結構化資料、文字推論，失敗時以 terminal 結束
func webpageEdges(terminal *common.CustomError) map[State]edge {
	return map[State]edge{
		StateWebpageFetch:         succeedOrFail(StateWebpageSchema, terminal),
		StateWebpageSchema:        {onSuccess: StateDone, onFailure: StateWebpageTextInference},
		StateWebpageTextInference: succeedOrFail(StateDone, terminal),
	}
}

func videoPlatformFlow() flow {
	// 退到網頁流程後的任何失敗都算下載與中繼資料用盡
	edges := webpageEdges(common.ErrDownloadAndMetadataExhausted)
	edges[StateValidate] = succeedOrFail(StateVideoMetadata, common.ErrUnsafeURL)
	edges[StateVideoMetadata] = edge{onSuccess: StateVideoDownload, onFailure: StateVideoDownload}
	edges[StateVideoDownload] = edge{onSuccess: StateVideoInference, onFailure: StateMetadataInference}
	edges[StateVideoInference] = edge{onSuccess: StateDone, onFailure: StateMetadataInference}
	edges[StateMetadataInference] = edge{onSuccess: StateDone, onFailure: StateWebpageFetch}
	return flow{start: StateValidate, edges: edges}
}

func genericWebpageFlow() flow {
	edges := webpageEdges(common.ErrFetchFailed)
	edges[StateWebpageTextInference] = succeedOrFail(StateDone, common.ErrNoRecipeFound)
	edges[StateValidate] = succeedOrFail(StateWebpageFetch, common.ErrUnsafeURL)
	return flow{start: StateValidate, edges: edges}
}

// flows 每一類輸入的轉移表
var flows = map[classify.InputClass]flow{
	classify.VideoPlatformURL:  videoPlatformFlow(),
	classify.GenericWebpageURL: genericWebpageFlow(),
	classify.DirectVideo: {
		start: StateDirectVideoInference,
		edges: map[State]edge{
			StateDirectVideoInference: succeedOrFail(StateDone, common.ErrNoRecipeFound),
		},
	},
	classify.DirectImage: {
		start: StateImageInference,
		edges: map[State]edge{
			StateImageInference: succeedOrFail(StateDone, common.ErrNoRecipeFound),
		},
	},
	classify.ImageWithCaptionURL: {
		start: StateCaptionFetch,
		edges: map[State]edge{
			// 說明網址無法使用時退回純圖片，不帶來源網址
			StateCaptionFetch:          {onSuccess: StateCaptionImageInference, onFailure: StateImageInference},
			StateCaptionImageInference: succeedOrFail(StateDone, common.ErrNoRecipeFound),
			StateImageInference:        succeedOrFail(StateDone, common.ErrNoRecipeFound),
		},
	},
}

// degradesOnUnsafe 不安全 URL 不會直接結束流程的狀態
var degradesOnUnsafe = map[State]bool{
	StateCaptionFetch: true,
}
