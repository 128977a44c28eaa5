// Package docs holds the Swagger document served at /swagger/*any.
// Regenerate with `swag init` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/health": {
			"get": {
				"tags": [
					"系统"
				],
				"summary": "健康检查",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"description": "检查数据库和 Redis 状态"
			}
		},
		"/lessons/{id}/start": {
			"post": {
				"tags": [
					"课时"
				],
				"summary": "开始课时",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课时ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/lessons/{id}/exercises/{index}": {
			"get": {
				"tags": [
					"课时"
				],
				"summary": "获取练习",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课时ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "练习序号",
						"name": "index",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/lessons/{id}/exercises/{index}/submit": {
			"post": {
				"tags": [
					"课时"
				],
				"summary": "提交答案",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课时ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "练习序号",
						"name": "index",
						"in": "path",
						"required": true
					},
					{
						"description": "答案",
						"name": "submission",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.Submission"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/lessons/{id}/exercises/{index}/hint": {
			"get": {
				"tags": [
					"课时"
				],
				"summary": "获取提示",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课时ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "练习序号",
						"name": "index",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/lessons/{id}/complete": {
			"post": {
				"tags": [
					"课时"
				],
				"summary": "完成课时",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课时ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/lessons/{id}/hints": {
			"get": {
				"tags": [
					"课时"
				],
				"summary": "预取课时提示",
				"description": "一次生成课时内全部练习的提示，已缓存的直接返回",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课时ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/practice/conversation": {
			"post": {
				"tags": [
					"练习"
				],
				"summary": "对话陪练",
				"description": "用当前学习语言回复，最多参考最近 10 轮对话",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "消息和历史",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.ConversationRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/lessons/{id}/review": {
			"get": {
				"tags": [
					"课时"
				],
				"summary": "作答回顾",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课时ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/profile": {
			"get": {
				"tags": [
					"档案"
				],
				"summary": "获取档案",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/profile/language": {
			"put": {
				"tags": [
					"档案"
				],
				"summary": "设置学习语言",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "spanish | chinese | french | japanese",
						"name": "language",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.LanguageRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/shop/purchase": {
			"post": {
				"tags": [
					"商店"
				],
				"summary": "商店购买",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "heart | heart_refill",
						"name": "purchase",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.PurchaseRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/quests": {
			"get": {
				"tags": [
					"任务"
				],
				"summary": "任务面板",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/achievements": {
			"get": {
				"tags": [
					"成就系统"
				],
				"summary": "获取用户成就",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/achievements/leaderboard": {
			"get": {
				"tags": [
					"成就系统"
				],
				"summary": "获取排行榜",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "返回数量",
						"name": "limit",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"util.Response": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {}
			}
		},
		"service.Submission": {
			"type": "object",
			"properties": {
				"choiceId": {
					"type": "integer"
				},
				"text": {
					"type": "string"
				}
			}
		},
		"service.ConversationRequest": {
			"type": "object",
			"required": [
				"message"
			],
			"properties": {
				"message": {
					"type": "string"
				},
				"history": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/service.ChatTurn"
					}
				}
			}
		},
		"service.ChatTurn": {
			"type": "object",
			"required": [
				"role",
				"content"
			],
			"properties": {
				"role": {
					"type": "string",
					"enum": [
						"user",
						"assistant"
					]
				},
				"content": {
					"type": "string"
				}
			}
		},
		"service.LanguageRequest": {
			"type": "object",
			"required": [
				"language"
			],
			"properties": {
				"language": {
					"type": "string",
					"enum": [
						"spanish",
						"chinese",
						"french",
						"japanese"
					]
				}
			}
		},
		"service.PurchaseRequest": {
			"type": "object",
			"required": [
				"item"
			],
			"properties": {
				"item": {
					"type": "string",
					"enum": [
						"heart",
						"heart_refill"
					]
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Lingua 后端 API",
	Description:      "语言学习课时、奖励、任务与成就服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
